package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fightstats/internal/config"
	"github.com/sells-group/fightstats/internal/normalize"
)

func testConfig() *config.Config {
	return &config.Config{
		Source:    config.SourceConfig{EventsURL: "http://ufcstats.com/statistics/events/completed"},
		Fetch:     config.FetchConfig{Backend: "http", RatePerSec: 2, Burst: 2, MaxRetries: 1, TimeoutSecs: 5},
		Normalize: config.NormalizeConfig{Encoding: "double_space", RequiredLabels: []string{"method"}},
		Batch:     config.BatchConfig{MaxConcurrentFights: 2},
		Export:    config.ExportConfig{Format: "csv", Dir: "."},
		Server:    config.ServerConfig{Port: 8080},
	}
}

func TestInitAssembler(t *testing.T) {
	c := testConfig()
	c.Normalize.Encoding = "positional"
	c.Normalize.SplitPoints = map[string]int{"fighter": 2}

	asm, pair, err := initAssembler(c)
	require.NoError(t, err)
	assert.NotNil(t, asm)
	assert.Equal(t, normalize.EncodingPositional, pair.Encoding)
	assert.Equal(t, 2, pair.SplitPoints["fighter"])
}

func TestInitAssembler_ColumnKindsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columns.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns:\n  \"Sig. str.\": landed_of\n"), 0o644))

	c := testConfig()
	c.Normalize.ColumnKindsFile = path
	_, _, err := initAssembler(c)
	require.NoError(t, err)

	c.Normalize.ColumnKindsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, _, err = initAssembler(c)
	assert.Error(t, err)
}

func TestInitAssembler_BadEncoding(t *testing.T) {
	c := testConfig()
	c.Normalize.Encoding = "zigzag"
	_, _, err := initAssembler(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "normalize.encoding")
}

func TestInitScraper(t *testing.T) {
	sc, err := initScraper(testConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, sc.RunID())

	c := testConfig()
	c.Fetch.Backend = "colly"
	_, err = initScraper(c)
	assert.NoError(t, err)
}

func TestInitScraper_InvalidConfig(t *testing.T) {
	c := testConfig()
	c.Fetch.Backend = "wget"
	_, err := initScraper(c)
	assert.Error(t, err)
}
