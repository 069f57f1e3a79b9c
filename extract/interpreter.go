package extract

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/tsawler/pdfchapters/chapter"
	"github.com/tsawler/pdfchapters/contentstream"
	"github.com/tsawler/pdfchapters/core"
	"github.com/tsawler/pdfchapters/font"
	"github.com/tsawler/pdfchapters/internal/logging"
)

// PageResult describes what happened to one page.
type PageResult struct {
	Page     int
	Text     string
	Decision chapter.Decision
	File     string // current file after classification
	Written  bool
}

// Interpreter runs the text operators of a page's content and routes the
// resulting text through the classifier to the sink.
type Interpreter struct {
	classifier         *chapter.Classifier
	resolver           font.Resolver
	decode             DecodeFunc
	logger             arbor.ILogger
	resetOnMissingFont bool
	minFontHeight      float64
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithDecoder replaces font.Decode.
func WithDecoder(fn DecodeFunc) Option {
	return func(in *Interpreter) { in.decode = fn }
}

func WithLogger(logger arbor.ILogger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

// WithResetOnMissingFont makes a Tf naming an unknown font clear the
// active encoding and height instead of leaving them in place.
func WithResetOnMissingFont(on bool) Option {
	return func(in *Interpreter) { in.resetOnMissingFont = on }
}

// WithMinFontHeight drops Tj and TJ text set in a font whose scaled cap
// height is known and below h. Zero disables the check.
func WithMinFontHeight(h float64) Option {
	return func(in *Interpreter) { in.minFontHeight = h }
}

// NewInterpreter returns an interpreter that classifies pages with c and
// reads font metrics through r. r may be nil, in which case only inline
// font descriptors are consulted.
func NewInterpreter(c *chapter.Classifier, r font.Resolver, opts ...Option) *Interpreter {
	in := &Interpreter{
		classifier: c,
		resolver:   r,
		decode:     font.Decode,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// ProcessPage interprets one page. The page text is classified once at the
// end, written or discarded, and the buffer is cleared whatever happens.
func (in *Interpreter) ProcessPage(ctx *Context, fonts font.Table, ops []contentstream.Operation) (PageResult, error) {
	ctx.Stats.Pages++
	page := ctx.Stats.Pages
	defer ctx.text.Reset()

	var st PageState
	for i, op := range ops {
		switch op.Operator {
		case "Tf":
			if err := in.setFont(&st, fonts, page, i, op); err != nil {
				return PageResult{Page: page}, err
			}
		case "Tj", "TJ":
			want := core.KindString
			if op.Operator == "TJ" {
				want = core.KindArray
			}
			if err := requireOperand(page, i, op, 0, want); err != nil {
				return PageResult{Page: page}, err
			}
			if in.tooSmall(st) {
				continue
			}
			Collect(&ctx.text, in.decode, st.Encoding, op.Operands)
		case "ET":
			ctx.endLine()
		}
	}

	text := ctx.text.String()
	d := in.classifier.Classify(text)
	switch {
	case d.Matched:
		in.logger.Debug().Int("page", page).Str("rule", d.Rule).Str("file", d.NewFile).Msg("Chapter marker matched")
	case d.Reason != "":
		in.logger.Debug().Int("page", page).Str("rule", d.Rule).Str("reason", d.Reason).Msg("Chapter marker ignored")
	}
	if err := ctx.apply(d); err != nil {
		return PageResult{Page: page, Text: text, Decision: d}, err
	}
	if d.NewFile != "" {
		in.logger.Info().Int("page", page).Str("file", d.NewFile).Msg("Output file opened")
	}

	res := PageResult{Page: page, Text: text, Decision: d, File: ctx.current}
	switch {
	case text == "":
	case ctx.canWrite:
		if err := ctx.sink.Write(text); err != nil {
			return res, err
		}
		ctx.Stats.Written++
		res.Written = true
	default:
		ctx.Stats.Suppressed++
		in.logger.Debug().Int("page", page).Int("bytes", len(text)).Msg("Page text suppressed")
	}
	return res, nil
}

func (in *Interpreter) setFont(st *PageState, fonts font.Table, page, index int, op contentstream.Operation) error {
	if err := requireOperand(page, index, op, 0, core.KindName); err != nil {
		return err
	}
	name := string(op.Operands[0].(core.Name))

	var size float64
	hasSize := len(op.Operands) > 1
	if hasSize {
		var ok bool
		if size, ok = ToFloat(op.Operands[1]); !ok {
			return &OperandError{
				Page: page, Index: index, Operator: op.Operator, Operand: 1,
				Want: "number", Got: core.KindOf(op.Operands[1]).String(),
			}
		}
	}

	desc, ok := fonts.Lookup(name)
	if !ok {
		in.logger.Debug().Int("page", page).Str("font", name).Msg("Font not in page resources")
		if in.resetOnMissingFont {
			st.Encoding = nil
			st.Height = 0
		}
		return nil
	}

	enc := desc.Encoding()
	st.Encoding = &enc
	if hasSize {
		capHeight, err := in.capHeight(desc)
		if err != nil {
			return fmt.Errorf("page %d: font %s metrics: %w", page, name, err)
		}
		st.Height = capHeight * size
	}
	return nil
}

// capHeight reads /CapHeight from the font descriptor, following one
// reference when the descriptor is indirect. Absent or non-numeric
// values count as 0.
func (in *Interpreter) capHeight(desc *font.Descriptor) (float64, error) {
	src := desc.MetricsSource()
	if src == nil {
		return 0, nil
	}
	if _, isRef := src.(core.IndirectRef); isRef {
		if in.resolver == nil {
			return 0, nil
		}
		var err error
		if src, err = in.resolver.Resolve(src); err != nil {
			return 0, err
		}
	}
	d, ok := src.(core.Dict)
	if !ok {
		return 0, nil
	}
	h, _ := ToFloat(d.Get("CapHeight"))
	return h, nil
}

func (in *Interpreter) tooSmall(st PageState) bool {
	return in.minFontHeight > 0 && st.Height > 0 && st.Height < in.minFontHeight
}

func requireOperand(page, index int, op contentstream.Operation, pos int, want core.Kind) error {
	got := "missing"
	if pos < len(op.Operands) {
		k := core.KindOf(op.Operands[pos])
		if k == want {
			return nil
		}
		got = k.String()
	}
	return &OperandError{
		Page: page, Index: index, Operator: op.Operator, Operand: pos,
		Want: want.String(), Got: got,
	}
}
