package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdfchapters/internal/config"
)

func TestNew(t *testing.T) {
	defaults := config.NewDefaultConfig().Logging

	tests := []struct {
		name   string
		modify func(c *config.LoggingConfig)
	}{
		{"defaults", func(c *config.LoggingConfig) {}},
		{"disabled", func(c *config.LoggingConfig) { c.Level = "disabled" }},
		{"json debug", func(c *config.LoggingConfig) { c.Level = "debug"; c.TextOutput = false }},
		{"with file", func(c *config.LoggingConfig) { c.File = filepath.Join(t.TempDir(), "run.log") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults
			tt.modify(&cfg)
			logger := New(cfg)
			require.NotNil(t, logger)
			assert.NotPanics(t, func() {
				logger.Info().Str("file", "01.txt").Msg("chapter started")
				logger.Debug().Int("page", 3).Msg("page classified")
			})
		})
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	require.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.Error().Str("file", "01.txt").Msg("dropped")
	})
}
