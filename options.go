package pdfchapters

import (
	"github.com/ternarybob/arbor"

	"github.com/tsawler/pdfchapters/internal/config"
	"github.com/tsawler/pdfchapters/internal/logging"
)

// Options holds the settings of one Splitter.
type Options struct {
	// Directory that receives the <basename>/ folder
	outputRoot string

	logger arbor.ILogger

	// Classification and interpretation switches
	distinctAppendices bool
	resetOnMissingFont bool
	minFontHeight      float64
}

// defaultOptions returns the default split options.
func defaultOptions() Options {
	return Options{
		outputRoot:         ".",
		logger:             logging.Discard(),
		distinctAppendices: false,
		resetOnMissingFont: false,
		minFontHeight:      0,
	}
}

// fromConfig copies the file and environment settings onto o.
// The logger is left alone; building one is the caller's choice.
func (o Options) fromConfig(cfg *config.Config) Options {
	if cfg.Output.Root != "" {
		o.outputRoot = cfg.Output.Root
	}
	o.distinctAppendices = cfg.Classifier.DistinctAppendices
	o.resetOnMissingFont = cfg.Extract.ResetEncodingOnMissingFont
	o.minFontHeight = cfg.Extract.MinFontHeight
	return o
}
