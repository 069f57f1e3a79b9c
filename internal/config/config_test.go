package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig(), cfg)
	assert.Equal(t, ".", cfg.Output.Root)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Extract.ResetEncodingOnMissingFont)
	assert.Zero(t, cfg.Extract.MinFontHeight)
	assert.False(t, cfg.Classifier.DistinctAppendices)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "pdfchapters.toml", `
[output]
root = "/srv/books"

[logging]
level = "debug"

[extract]
reset_encoding_on_missing_font = true
min_font_height = 4500.5

[classifier]
distinct_appendices = true
`)
	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/books", cfg.Output.Root)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "15:04:05", cfg.Logging.TimeFormat, "unset keys keep defaults")
	assert.True(t, cfg.Extract.ResetEncodingOnMissingFont)
	assert.Equal(t, 4500.5, cfg.Extract.MinFontHeight)
	assert.True(t, cfg.Classifier.DistinctAppendices)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "pdfchapters.yaml", `
output:
  root: out
logging:
  level: warn
  text_output: false
classifier:
  distinct_appendices: true
`)
	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Output.Root)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.False(t, cfg.Logging.TextOutput)
	assert.True(t, cfg.Classifier.DistinctAppendices)
}

func TestLoadLaterFileWins(t *testing.T) {
	base := writeFile(t, "base.toml", "[output]\nroot = \"base\"\n[logging]\nlevel = \"debug\"\n")
	override := writeFile(t, "override.yml", "output:\n  root: override\n")

	cfg, err := LoadFromFiles(base, "", override)
	require.NoError(t, err)
	assert.Equal(t, "override", cfg.Output.Root)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, "c.toml", "[output]\nroot = \"file\"\n")
	t.Setenv("PDFCHAPTERS_OUTPUT_ROOT", "env")
	t.Setenv("PDFCHAPTERS_LOG_LEVEL", "ERROR")
	t.Setenv("PDFCHAPTERS_DISTINCT_APPENDICES", "true")
	t.Setenv("PDFCHAPTERS_RESET_ENCODING_ON_MISSING_FONT", "1")
	t.Setenv("PDFCHAPTERS_MIN_FONT_HEIGHT", "12.5")
	t.Setenv("PDFCHAPTERS_LOG_TEXT_OUTPUT", "false")

	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.Output.Root)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.True(t, cfg.Classifier.DistinctAppendices)
	assert.True(t, cfg.Extract.ResetEncodingOnMissingFont)
	assert.Equal(t, 12.5, cfg.Extract.MinFontHeight)
	assert.False(t, cfg.Logging.TextOutput)
}

func TestEnvOverrideInvalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"PDFCHAPTERS_DISTINCT_APPENDICES", "sometimes"},
		{"PDFCHAPTERS_MIN_FONT_HEIGHT", "tall"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.name, tt.value)
			_, err := LoadFromFiles()
			assert.ErrorContains(t, err, tt.name)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		paths func(t *testing.T) []string
	}{
		{"missing file", func(t *testing.T) []string { return []string{filepath.Join(t.TempDir(), "nope.toml")} }},
		{"bad toml", func(t *testing.T) []string { return []string{writeFile(t, "bad.toml", "[output\nroot=")} }},
		{"bad yaml", func(t *testing.T) []string { return []string{writeFile(t, "bad.yaml", "output: [unclosed")} }},
		{"unknown level", func(t *testing.T) []string { return []string{writeFile(t, "lvl.toml", "[logging]\nlevel = \"loud\"\n")} }},
		{"negative height", func(t *testing.T) []string {
			return []string{writeFile(t, "h.toml", "[extract]\nmin_font_height = -1.0\n")}
		}},
		{"empty root", func(t *testing.T) []string { return []string{writeFile(t, "r.toml", "[output]\nroot = \"\"\n")} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFiles(tt.paths(t)...)
			assert.Error(t, err)
		})
	}
}
