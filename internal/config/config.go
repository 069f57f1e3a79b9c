package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// EnvPrefix starts every environment variable that overrides a setting.
const EnvPrefix = "PDFCHAPTERS_"

// Config holds all settings for a run.
type Config struct {
	Output     OutputConfig     `toml:"output" yaml:"output"`
	Logging    LoggingConfig    `toml:"logging" yaml:"logging"`
	Extract    ExtractConfig    `toml:"extract" yaml:"extract"`
	Classifier ClassifierConfig `toml:"classifier" yaml:"classifier"`
}

// OutputConfig controls where chapter folders are created.
type OutputConfig struct {
	// Root is the directory that receives the <basename>/ folder.
	Root string `toml:"root" yaml:"root" validate:"required"`
}

type LoggingConfig struct {
	Level      string `toml:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	TimeFormat string `toml:"time_format" yaml:"time_format" validate:"required"`
	TextOutput bool   `toml:"text_output" yaml:"text_output"`
	// File, when set, also writes the log to this path.
	File string `toml:"file" yaml:"file"`
}

// ExtractConfig tunes the content interpreter.
type ExtractConfig struct {
	// ResetEncodingOnMissingFont clears the active encoding when Tf names
	// a font the page does not declare.
	ResetEncodingOnMissingFont bool `toml:"reset_encoding_on_missing_font" yaml:"reset_encoding_on_missing_font"`
	// MinFontHeight drops text whose scaled cap height is known and
	// smaller. 0 keeps all text.
	MinFontHeight float64 `toml:"min_font_height" yaml:"min_font_height" validate:"gte=0"`
}

type ClassifierConfig struct {
	// DistinctAppendices writes A.txt, B.txt, ... instead of reusing A.txt.
	DistinctAppendices bool `toml:"distinct_appendices" yaml:"distinct_appendices"`
}

// NewDefaultConfig returns the settings used when nothing is configured.
func NewDefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Root: "."},
		Logging: LoggingConfig{
			Level:      "info",
			TimeFormat: "15:04:05",
			TextOutput: true,
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 ->
// file2 -> ... -> environment. Later files override earlier ones. Files
// ending in .yaml or .yml are read as YAML, anything else as TOML.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, config)
		default:
			err = toml.Unmarshal(data, config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnvOverrides(config *Config) error {
	if root := os.Getenv(EnvPrefix + "OUTPUT_ROOT"); root != "" {
		config.Output.Root = root
	}
	if level := os.Getenv(EnvPrefix + "LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}
	if format := os.Getenv(EnvPrefix + "LOG_TIME_FORMAT"); format != "" {
		config.Logging.TimeFormat = format
	}
	if file := os.Getenv(EnvPrefix + "LOG_FILE"); file != "" {
		config.Logging.File = file
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"LOG_TEXT_OUTPUT", &config.Logging.TextOutput},
		{"RESET_ENCODING_ON_MISSING_FONT", &config.Extract.ResetEncodingOnMissingFont},
		{"DISTINCT_APPENDICES", &config.Classifier.DistinctAppendices},
	}
	for _, b := range bools {
		v := os.Getenv(EnvPrefix + b.name)
		if v == "" {
			continue
		}
		on, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, b.name, err)
		}
		*b.dst = on
	}

	if v := os.Getenv(EnvPrefix + "MIN_FONT_HEIGHT"); v != "" {
		h, err := cast.ToFloat64E(v)
		if err != nil {
			return fmt.Errorf("%sMIN_FONT_HEIGHT: %w", EnvPrefix, err)
		}
		config.Extract.MinFontHeight = h
	}
	return nil
}
