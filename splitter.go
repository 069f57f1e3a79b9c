package pdfchapters

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/tsawler/pdfchapters/chapter"
	"github.com/tsawler/pdfchapters/extract"
	"github.com/tsawler/pdfchapters/internal/config"
	"github.com/tsawler/pdfchapters/internal/logging"
	"github.com/tsawler/pdfchapters/output"
	"github.com/tsawler/pdfchapters/reader"
)

const pdfMIME = "application/pdf"

// Splitter provides a fluent interface for splitting one PDF into chapter
// files. Each configuration method returns a new Splitter, so a base
// Splitter can be shared and specialised.
type Splitter struct {
	// Source
	filename string
	reader   *reader.Reader // set by FromReader; owned by the caller

	// Configuration
	options Options
}

// Summary reports the outcome of a run.
type Summary struct {
	RunID      string
	Source     string
	Folder     string // output folder path
	Version    string // PDF header version
	Repaired   bool   // cross-reference data had to be rebuilt
	Pages      int
	Written    int      // pages whose text went to a file
	Suppressed int      // pages whose text was discarded
	Files      []string // files opened, in order; repeats allowed
	Bytes      int64
}

func (s *Splitter) clone() *Splitter {
	c := *s
	return &c
}

// ============================================================================
// Configuration Methods (return new Splitter instance)
// ============================================================================

// OutputRoot sets the directory that receives the output folder. The
// default is the working directory.
//
// Example:
//
//	pdfchapters.Open("book.pdf").OutputRoot("/tmp/out").Run(ctx)
func (s *Splitter) OutputRoot(dir string) *Splitter {
	c := s.clone()
	c.options.outputRoot = dir
	return c
}

// Logger routes progress and diagnostics to logger. Without it the run is
// silent.
func (s *Splitter) Logger(logger arbor.ILogger) *Splitter {
	c := s.clone()
	if logger == nil {
		logger = logging.Discard()
	}
	c.options.logger = logger
	return c
}

// DistinctAppendices writes each appendix to its own file (A.txt, B.txt,
// ...) instead of reusing A.txt.
func (s *Splitter) DistinctAppendices() *Splitter {
	c := s.clone()
	c.options.distinctAppendices = true
	return c
}

// ResetEncodingOnMissingFont clears the active encoding when a Tf names a
// font the page does not declare.
func (s *Splitter) ResetEncodingOnMissingFont() *Splitter {
	c := s.clone()
	c.options.resetOnMissingFont = true
	return c
}

// MinFontHeight drops text set in a font whose cap height times size is
// known and below h.
func (s *Splitter) MinFontHeight(h float64) *Splitter {
	c := s.clone()
	c.options.minFontHeight = h
	return c
}

// Configure applies loaded settings. The logger is not touched.
func (s *Splitter) Configure(cfg *config.Config) *Splitter {
	c := s.clone()
	if cfg != nil {
		c.options = c.options.fromConfig(cfg)
	}
	return c
}

// ============================================================================
// Terminal Operation
// ============================================================================

// Run splits the document. The output folder is recreated from scratch, so
// running twice on the same input gives the same files. Cancelling ctx
// stops the run between pages.
func (s *Splitter) Run(ctx context.Context) (*Summary, error) {
	// The output folder is named after the source, so a reader alone is
	// not enough.
	if s.filename == "" {
		return nil, ErrArgumentMissing
	}
	log := s.options.logger
	runID := uuid.New().String()

	r, err := s.open()
	if err != nil {
		return nil, err
	}
	if r != s.reader {
		defer r.Close()
	}

	count, err := r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentLoad, err)
	}

	sink, err := output.New(s.options.outputRoot, s.filename)
	if err != nil {
		return nil, err
	}
	defer sink.Close()

	log.Info().
		Str("run_id", runID).
		Str("source", s.filename).
		Str("folder", sink.Dir()).
		Int("pages", count).
		Str("version", r.Version().String()).
		Bool("repaired", r.Repaired()).
		Msg("Splitting document")

	classifier := chapter.New(chapter.WithDistinctAppendices(s.options.distinctAppendices))
	interp := extract.NewInterpreter(classifier, r,
		extract.WithLogger(log),
		extract.WithResetOnMissingFont(s.options.resetOnMissingFont),
		extract.WithMinFontHeight(s.options.minFontHeight),
	)
	state := extract.NewContext(sink)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.splitPage(r, interp, state, i); err != nil {
			log.Error().Str("run_id", runID).Int("page", i+1).Err(err).Msg("Split failed")
			return nil, err
		}
	}

	if err := sink.Close(); err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:      runID,
		Source:     s.filename,
		Folder:     sink.Dir(),
		Version:    r.Version().String(),
		Repaired:   r.Repaired(),
		Pages:      state.Stats.Pages,
		Written:    state.Stats.Written,
		Suppressed: state.Stats.Suppressed,
		Files:      sink.Created(),
		Bytes:      sink.Written(),
	}
	log.Info().
		Str("run_id", runID).
		Int("pages", summary.Pages).
		Int("written", summary.Written).
		Int("suppressed", summary.Suppressed).
		Int("files", len(summary.Files)).
		Str("size", humanize.Bytes(uint64(summary.Bytes))).
		Msg("Split complete")
	return summary, nil
}

// open returns the reader to use, opening the named file when the Splitter
// was not built from a reader.
func (s *Splitter) open() (*reader.Reader, error) {
	if s.reader != nil {
		return s.reader, nil
	}
	mt, err := mimetype.DetectFile(s.filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentLoad, err)
	}
	if !mt.Is(pdfMIME) {
		return nil, fmt.Errorf("%w: %s is %s, not a PDF", ErrDocumentLoad, filepath.Base(s.filename), mt.String())
	}
	r, err := reader.Open(s.filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentLoad, err)
	}
	return r, nil
}

func (s *Splitter) splitPage(r *reader.Reader, interp *extract.Interpreter, state *extract.Context, index int) error {
	page, err := r.GetPage(index)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDocumentLoad, err)
	}
	fonts, err := r.PageFonts(page)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDocumentLoad, err)
	}
	ops, err := r.PageOperations(page)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDocumentLoad, err)
	}
	if _, err := interp.ProcessPage(state, fonts, ops); err != nil {
		if errors.Is(err, ErrIO) || errors.Is(err, ErrOperandType) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrDocumentLoad, err)
	}
	return nil
}
