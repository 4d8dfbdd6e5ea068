package main

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fightstats/internal/config"
	"github.com/sells-group/fightstats/internal/fetcher"
	"github.com/sells-group/fightstats/internal/normalize"
	"github.com/sells-group/fightstats/internal/pipeline"
)

// initAssembler builds the normalization settings shared by every command.
func initAssembler(c *config.Config) (*normalize.Assembler, normalize.PairOptions, error) {
	enc, err := normalize.ParseEncoding(c.Normalize.Encoding)
	if err != nil {
		return nil, normalize.PairOptions{}, eris.Wrap(err, "normalize.encoding")
	}
	pair := normalize.PairOptions{Encoding: enc, SplitPoints: c.Normalize.SplitPoints}

	opts := []normalize.Option{
		normalize.WithRequiredLabels(c.Normalize.RequiredLabels...),
		normalize.WithLenient(c.Normalize.Lenient),
	}
	if c.Normalize.ColumnKindsFile != "" {
		kinds, err := normalize.LoadColumnKinds(c.Normalize.ColumnKindsFile)
		if err != nil {
			return nil, normalize.PairOptions{}, err
		}
		opts = append(opts, normalize.WithColumnKinds(kinds))
	}
	return normalize.NewAssembler(opts...), pair, nil
}

// initScraper validates the scrape settings and builds the fetcher and
// scraper.
func initScraper(c *config.Config) (*pipeline.Scraper, error) {
	if err := c.Validate("scrape"); err != nil {
		return nil, err
	}

	f, err := fetcher.New(c.Fetch.Backend, fetcher.Options{
		UserAgent:  c.Fetch.UserAgent,
		Timeout:    time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: c.Fetch.MaxRetries,
		RatePerSec: c.Fetch.RatePerSec,
		Burst:      c.Fetch.Burst,
	})
	if err != nil {
		return nil, err
	}

	asm, pair, err := initAssembler(c)
	if err != nil {
		return nil, err
	}

	return pipeline.New(f, asm, pipeline.Options{
		NextSelector:        c.Source.NextSelector,
		MaxPages:            c.Walk.MaxPages,
		MaxConcurrentFights: c.Batch.MaxConcurrentFights,
		Pair:                pair,
	}), nil
}
