package logging

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"

	"github.com/tsawler/pdfchapters/internal/config"
)

const (
	maxLogSize    = 10 * 1024 * 1024
	maxLogBackups = 3

	levelDisabled = "disabled"
)

// New builds a logger from the logging settings. Output always goes to the
// console; cfg.File adds a rotating file writer. The "disabled" level
// returns a logger with no writers.
func New(cfg config.LoggingConfig) arbor.ILogger {
	if cfg.Level == levelDisabled {
		return Discard()
	}

	// logfmt lines for people, JSON otherwise.
	format := models.OutputFormatJSON
	if cfg.TextOutput {
		format = models.OutputFormatLogfmt
	}

	logger := arbor.NewLogger().WithConsoleWriter(models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: cfg.TimeFormat,
		OutputType: format,
	})
	if cfg.File != "" {
		logger = logger.WithFileWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeFile,
			FileName:   cfg.File,
			TimeFormat: cfg.TimeFormat,
			MaxSize:    maxLogSize,
			MaxBackups: maxLogBackups,
			OutputType: models.OutputFormatLogfmt,
		})
	}
	return logger.WithLevelFromString(cfg.Level)
}

// Discard returns a logger that drops every event.
func Discard() arbor.ILogger {
	return arbor.NewLogger().WithLevelFromString(levelDisabled)
}

