// Package pipeline wires the page collaborator (fetcher + ufcstats) to the
// normalization core: it walks the events listing, reads event cards and
// assembles fight records.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/fightstats/internal/fetcher"
	"github.com/sells-group/fightstats/internal/model"
	"github.com/sells-group/fightstats/internal/normalize"
	"github.com/sells-group/fightstats/internal/paginate"
	"github.com/sells-group/fightstats/internal/ufcstats"
)

// Options tunes a Scraper.
type Options struct {
	NextSelector        string
	MaxPages            int
	MaxConcurrentFights int
	Pair                normalize.PairOptions
}

// FightResult is the outcome of one bout on a card. Exactly one of Record
// and Err is set.
type FightResult struct {
	Link   string             `json:"link"`
	Record *model.FightRecord `json:"record,omitempty"`
	Err    error              `json:"-"`
}

// Scraper fetches ufcstats pages and normalizes them. It is safe for
// concurrent use.
type Scraper struct {
	fetcher   fetcher.Fetcher
	assembler *normalize.Assembler
	opts      Options
	runID     string
}

// New creates a Scraper. A nil assembler gets the defaults.
func New(f fetcher.Fetcher, asm *normalize.Assembler, opts Options) *Scraper {
	if asm == nil {
		asm = normalize.NewAssembler()
	}
	if opts.MaxConcurrentFights <= 0 {
		opts.MaxConcurrentFights = 4
	}
	return &Scraper{
		fetcher:   f,
		assembler: asm,
		opts:      opts,
		runID:     uuid.NewString(),
	}
}

// RunID identifies this scraper's run in logs and export names.
func (s *Scraper) RunID() string { return s.runID }

func (s *Scraper) log() *zap.Logger {
	return zap.L().With(zap.String("component", "pipeline"), zap.String("run_id", s.runID))
}

// FetchEventPage fetches one listing page and extracts it. It is the
// paginate.FetchFunc the walker drives.
func (s *Scraper) FetchEventPage(ctx context.Context, ref string) (paginate.Page, error) {
	body, err := s.fetcher.Download(ctx, ref)
	if err != nil {
		return paginate.Page{}, err
	}
	defer body.Close() //nolint:errcheck

	return ufcstats.ParseEventList(body, ref, s.opts.NextSelector)
}

// Events walks the listing from start. On a fetch failure the partial
// result is returned with the error.
func (s *Scraper) Events(ctx context.Context, start string) (*model.WalkResult, error) {
	if start == "" {
		start = ufcstats.DefaultEventsURL
	}
	w := paginate.NewWalker(s.FetchEventPage, s.opts.MaxPages)
	return w.Walk(ctx, start)
}

// Card fetches and extracts one event card.
func (s *Scraper) Card(ctx context.Context, eventURL string) (*model.EventCard, error) {
	body, err := s.fetcher.Download(ctx, eventURL)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: fetch card %s", eventURL)
	}
	defer body.Close() //nolint:errcheck

	card, err := ufcstats.ParseEventCard(body, eventURL)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: card %s", eventURL)
	}
	return card, nil
}

// Fight fetches one fight page and assembles its record.
func (s *Scraper) Fight(ctx context.Context, link model.FightLink, event model.EventSummary) (*model.FightRecord, error) {
	body, err := s.fetcher.Download(ctx, link.Link)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: fetch fight %s", link.Link)
	}
	defer body.Close() //nolint:errcheck

	fp, err := ufcstats.ParseFightPage(body, link.Link)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: fight %s", link.Link)
	}

	rec, err := BuildRecord(s.assembler, s.opts.Pair, fp, event, link)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: fight %s", link.Link)
	}
	return rec, nil
}

// Fights assembles every bout on card concurrently. Each bout gets its own
// result slot in card order; one bout failing does not affect the others.
func (s *Scraper) Fights(ctx context.Context, card *model.EventCard) []FightResult {
	log := s.log().With(zap.String("event", card.Event.Name))
	start := time.Now()

	results := make([]FightResult, len(card.Fights))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxConcurrentFights)
	for i, fl := range card.Fights {
		g.Go(func() error {
			rec, err := s.Fight(gCtx, fl, card.Event)
			results[i] = FightResult{Link: fl.Link, Record: rec, Err: err}
			if err != nil {
				log.Warn("pipeline: fight failed", zap.String("link", fl.Link), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("pipeline: card assembled",
		zap.Int("fights", len(results)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results
}

// EventFights reads a card and assembles all of its bouts.
func (s *Scraper) EventFights(ctx context.Context, eventURL string) (*model.EventCard, []FightResult, error) {
	card, err := s.Card(ctx, eventURL)
	if err != nil {
		return nil, nil, err
	}
	return card, s.Fights(ctx, card), nil
}

// Records returns the successful records of results, in order.
func Records(results []FightResult) []*model.FightRecord {
	out := make([]*model.FightRecord, 0, len(results))
	for _, r := range results {
		if r.Record != nil {
			out = append(out, r.Record)
		}
	}
	return out
}
