package extract

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdfchapters/chapter"
	"github.com/tsawler/pdfchapters/contentstream"
	"github.com/tsawler/pdfchapters/core"
	"github.com/tsawler/pdfchapters/font"
)

// memSink keeps files in memory.
type memSink struct {
	files   map[string]*strings.Builder
	current string
	created []string
	failOn  string
}

func newMemSink() *memSink {
	s := &memSink{files: map[string]*strings.Builder{}}
	s.CreateFile(chapter.PrefaceFile)
	s.created = nil
	return s
}

func (s *memSink) CreateFile(name string) error {
	if name == s.failOn {
		return errors.New("disk full")
	}
	s.files[name] = &strings.Builder{}
	s.current = name
	s.created = append(s.created, name)
	return nil
}

func (s *memSink) Write(text string) error {
	s.files[s.current].WriteString(text)
	return nil
}

func (s *memSink) content(name string) string {
	if b, ok := s.files[name]; ok {
		return b.String()
	}
	return ""
}

type mapResolver map[int]core.Object

func (m mapResolver) Resolve(obj core.Object) (core.Object, error) {
	ref, ok := obj.(core.IndirectRef)
	if !ok {
		return obj, nil
	}
	if o, ok := m[ref.Number]; ok {
		return o, nil
	}
	return nil, fmt.Errorf("object %d missing", ref.Number)
}

func op(operator string, operands ...core.Object) contentstream.Operation {
	return contentstream.Operation{Operator: operator, Operands: operands}
}

// textPage sets F1 and shows each line in its own text object.
func textPage(lines ...string) []contentstream.Operation {
	ops := []contentstream.Operation{op("BT"), op("Tf", core.Name("F1"), core.Int(12))}
	for _, l := range lines {
		ops = append(ops, op("Tj", core.String(l)), op("ET"), op("BT"))
	}
	return append(ops, op("ET"))
}

var winAnsi = font.Table{
	"F1": font.NewDescriptor(core.Dict{"Encoding": core.Name("WinAnsiEncoding")}, nil),
}

func run(t *testing.T, in *Interpreter, pages ...[]contentstream.Operation) (*memSink, *Context) {
	t.Helper()
	sink := newMemSink()
	ctx := NewContext(sink)
	for _, ops := range pages {
		_, err := in.ProcessPage(ctx, winAnsi, ops)
		require.NoError(t, err)
	}
	return sink, ctx
}

func TestProcessPageWithoutText(t *testing.T) {
	in := NewInterpreter(chapter.New(), nil)
	sink := newMemSink()
	ctx := NewContext(sink)
	ctx.canWrite = true

	res, err := in.ProcessPage(ctx, winAnsi, []contentstream.Operation{
		op("BT"), op("Tf", core.Name("F1"), core.Int(12)), op("Td", core.Int(10), core.Int(10)), op("ET"),
		op("re", core.Int(0), core.Int(0), core.Int(5), core.Int(5)), op("f"),
	})
	require.NoError(t, err)
	assert.Equal(t, "", res.Text)
	assert.False(t, res.Written)
	assert.Equal(t, "", sink.content(chapter.PrefaceFile))
	assert.Empty(t, sink.created)
}

func TestProcessPageEndLine(t *testing.T) {
	in := NewInterpreter(chapter.New(), nil)
	ctx := NewContext(newMemSink())

	res, err := in.ProcessPage(ctx, winAnsi, []contentstream.Operation{
		op("BT"), op("ET"),
		op("BT"), op("Tj", core.String("one")), op("ET"),
		op("BT"), op("ET"),
		op("BT"), op("TJ", core.Array{core.String("two"), core.Int(-250), core.String("words")}), op("ET"),
		op("BT"), op("Tj", core.String("three")), op("Tj", core.String("+")), op("ET"),
	})
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo words \nthree+\n", res.Text)
}

func TestProcessPageLeadingEmptyTextObject(t *testing.T) {
	// An empty BT ET before the heading adds no blank line, so the page
	// still starts with the marker and opens 01.txt.
	in := NewInterpreter(chapter.New(), nil)
	sink, ctx := run(t, in, []contentstream.Operation{
		op("BT"), op("ET"),
		op("BT"), op("Tf", core.Name("F1"), core.Int(12)), op("Tj", core.String("Chapter 1")), op("ET"),
	})
	assert.Equal(t, "Chapter 1\n", sink.content("01.txt"))
	assert.Equal(t, "01.txt", ctx.CurrentFile())
	assert.Equal(t, []string{"01.txt"}, sink.created)
}

func TestProcessPageChapterFlow(t *testing.T) {
	in := NewInterpreter(chapter.New(), nil)
	sink, ctx := run(t, in,
		textPage("Copyright 2024"),
		textPage("Introduction", "Why this book"),
		textPage("Chapter 1 Beginnings", "First page"),
		textPage("More of one"),
		textPage("Part II"),
		textPage("Skipped filler"),
		textPage("Chapter 12: Later"),
		textPage("Appendix A", "alpha"),
		textPage("Appendix B", "beta"),
		textPage("Index", "aardvark"),
		textPage("zebra"),
	)

	assert.Equal(t, "Introduction\nWhy this book\n", sink.content("00.txt"))
	assert.Equal(t, "Chapter 1 Beginnings\nFirst page\nMore of one\n", sink.content("01.txt"))
	assert.Equal(t, "Chapter 12: Later\n", sink.content("12.txt"))
	assert.Equal(t, "Appendix B\nbeta\n", sink.content("A.txt"))
	assert.Equal(t, []string{"01.txt", "12.txt", "A.txt", "A.txt"}, sink.created)

	assert.Equal(t, Stats{Pages: 11, Written: 6, Suppressed: 5}, ctx.Stats)
	assert.False(t, ctx.CanWrite())
	assert.Equal(t, "A.txt", ctx.CurrentFile())
}

func TestProcessPageSuppressedUntilMarker(t *testing.T) {
	in := NewInterpreter(chapter.New(), nil)
	sink, ctx := run(t, in,
		textPage("Chapter 3"),
		textPage("Part Two"),
		textPage("unmarked"),
		textPage("also unmarked"),
		textPage("Introduction to part two"),
		textPage("resumed"),
	)
	assert.Equal(t, "Chapter 3\nIntroduction to part two\nresumed\n", sink.content("03.txt"))
	assert.Equal(t, Stats{Pages: 6, Written: 3, Suppressed: 3}, ctx.Stats)
	// Introduction resumes the current file.
	assert.Equal(t, "03.txt", ctx.CurrentFile())
	assert.True(t, ctx.CanWrite())
}

func TestProcessPageChapterWithoutNumber(t *testing.T) {
	in := NewInterpreter(chapter.New(), nil)
	sink, ctx := run(t, in, textPage("Chapter 2"), textPage("Chapter Two"))
	assert.Equal(t, "Chapter 2\nChapter Two\n", sink.content("02.txt"))
	assert.Equal(t, "02.txt", ctx.CurrentFile())
}

func TestProcessPageEncoding(t *testing.T) {
	in := NewInterpreter(chapter.New(), nil)
	sink := newMemSink()
	ctx := NewContext(sink)
	fonts := font.Table{
		"F1": font.NewDescriptor(core.Dict{"Encoding": core.Name("WinAnsiEncoding")}, nil),
		"F2": font.NewDescriptor(core.Dict{"Encoding": core.Name("MacRomanEncoding")}, nil),
	}

	tests := []struct {
		name string
		ops  []contentstream.Operation
		want string
	}{
		{
			"win ansi",
			[]contentstream.Operation{op("Tf", core.Name("F1"), core.Int(10)), op("Tj", core.String("caf\xe9"))},
			"café",
		},
		{
			"mac roman",
			[]contentstream.Operation{op("Tf", core.Name("F2"), core.Int(10)), op("Tj", core.String("caf\x8e"))},
			"café",
		},
		{
			"no font selected on this page",
			[]contentstream.Operation{op("Tj", core.String("plain"))},
			"plain",
		},
		{
			"unknown font keeps previous encoding",
			[]contentstream.Operation{
				op("Tf", core.Name("F1"), core.Int(10)),
				op("Tf", core.Name("F9"), core.Int(10)),
				op("Tj", core.String("\xe9")),
			},
			"é",
		},
		{
			"size operand optional",
			[]contentstream.Operation{op("Tf", core.Name("F1")), op("Tj", core.String("\xe9"))},
			"é",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := in.ProcessPage(ctx, fonts, tt.ops)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Text)
		})
	}
}

func TestProcessPageEncodingResetsEachPage(t *testing.T) {
	var seen []*string
	decode := func(e *string, raw []byte) string {
		seen = append(seen, e)
		return string(raw)
	}
	in := NewInterpreter(chapter.New(), nil, WithDecoder(decode))
	ctx := NewContext(newMemSink())

	_, err := in.ProcessPage(ctx, winAnsi, []contentstream.Operation{op("Tf", core.Name("F1"), core.Int(9)), op("Tj", core.String("a"))})
	require.NoError(t, err)
	_, err = in.ProcessPage(ctx, winAnsi, []contentstream.Operation{op("Tj", core.String("b"))})
	require.NoError(t, err)

	require.Len(t, seen, 2)
	require.NotNil(t, seen[0])
	assert.Equal(t, "WinAnsiEncoding", *seen[0])
	assert.Nil(t, seen[1])
}

func TestResetOnMissingFont(t *testing.T) {
	var last *string
	decode := func(e *string, raw []byte) string {
		last = e
		return string(raw)
	}
	ops := []contentstream.Operation{
		op("Tf", core.Name("F1"), core.Int(10)),
		op("Tf", core.Name("Missing"), core.Int(10)),
		op("Tj", core.String("x")),
	}

	in := NewInterpreter(chapter.New(), nil, WithDecoder(decode))
	_, err := in.ProcessPage(NewContext(newMemSink()), winAnsi, ops)
	require.NoError(t, err)
	require.NotNil(t, last)

	in = NewInterpreter(chapter.New(), nil, WithDecoder(decode), WithResetOnMissingFont(true))
	_, err = in.ProcessPage(NewContext(newMemSink()), winAnsi, ops)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestCapHeight(t *testing.T) {
	objs := mapResolver{
		7: core.Dict{"CapHeight": core.Int(700)},
		8: core.Dict{"CapHeight": core.Real(662.5)},
		9: core.Dict{"CapHeight": core.Name("tall")},
	}
	in := NewInterpreter(chapter.New(), objs)

	tests := []struct {
		name    string
		metrics core.Object
		want    float64
	}{
		{"indirect integer", core.IndirectRef{Number: 7}, 700},
		{"indirect real", core.IndirectRef{Number: 8}, 662.5},
		{"inline", core.Dict{"CapHeight": core.Int(500)}, 500},
		{"non-numeric", core.IndirectRef{Number: 9}, 0},
		{"absent", nil, 0},
		{"inline without cap height", core.Dict{"Ascent": core.Int(900)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := core.Dict{}
			if tt.metrics != nil {
				d["FontDescriptor"] = tt.metrics
			}
			got, err := in.capHeight(font.NewDescriptor(d, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := in.capHeight(font.NewDescriptor(core.Dict{"FontDescriptor": core.IndirectRef{Number: 99}}, nil))
	assert.Error(t, err)

	got, err := NewInterpreter(chapter.New(), nil).capHeight(font.NewDescriptor(core.Dict{"FontDescriptor": core.IndirectRef{Number: 7}}, nil))
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestMinFontHeight(t *testing.T) {
	objs := mapResolver{7: core.Dict{"CapHeight": core.Int(700)}}
	fonts := font.Table{
		"F1": font.NewDescriptor(core.Dict{"FontDescriptor": core.IndirectRef{Number: 7}}, nil),
		"F0": font.NewDescriptor(core.Dict{}, nil),
	}
	ops := []contentstream.Operation{
		op("Tf", core.Name("F1"), core.Int(12)),
		op("Tj", core.String("Body")),
		op("Tf", core.Name("F1"), core.Int(6)),
		op("Tj", core.String(" footer")),
		op("Tf", core.Name("F0"), core.Int(6)),
		op("Tj", core.String(" unknown metrics")),
	}

	in := NewInterpreter(chapter.New(), objs, WithMinFontHeight(5000))
	res, err := in.ProcessPage(NewContext(newMemSink()), fonts, ops)
	require.NoError(t, err)
	assert.Equal(t, "Body unknown metrics", res.Text)

	in = NewInterpreter(chapter.New(), objs)
	res, err = in.ProcessPage(NewContext(newMemSink()), fonts, ops)
	require.NoError(t, err)
	assert.Equal(t, "Body footer unknown metrics", res.Text)
}

func TestOperandErrors(t *testing.T) {
	tests := []struct {
		name    string
		op      contentstream.Operation
		operand int
		want    string
		got     string
	}{
		{"Tf without operands", op("Tf"), 0, "name", "missing"},
		{"Tf with string name", op("Tf", core.String("F1"), core.Int(12)), 0, "name", "string"},
		{"Tf with name size", op("Tf", core.Name("F1"), core.Name("big")), 1, "number", "name"},
		{"Tj without operands", op("Tj"), 0, "string", "missing"},
		{"Tj with array", op("Tj", core.Array{core.String("x")}), 0, "string", "array"},
		{"TJ with string", op("TJ", core.String("x")), 0, "array", "string"},
		{"TJ with integer", op("TJ", core.Int(3)), 0, "array", "integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewInterpreter(chapter.New(), nil)
			ctx := NewContext(newMemSink())
			ctx.Stats.Pages = 4

			_, err := in.ProcessPage(ctx, winAnsi, []contentstream.Operation{op("BT"), tt.op})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOperandType)

			var oe *OperandError
			require.True(t, errors.As(err, &oe))
			assert.Equal(t, 5, oe.Page)
			assert.Equal(t, 1, oe.Index)
			assert.Equal(t, tt.op.Operator, oe.Operator)
			assert.Equal(t, tt.operand, oe.Operand)
			assert.Equal(t, tt.want, oe.Want)
			assert.Equal(t, tt.got, oe.Got)
			assert.Contains(t, oe.Error(), "page 5")
		})
	}
}

func TestOperandErrorAbortsBeforeWriting(t *testing.T) {
	in := NewInterpreter(chapter.New(), nil)
	sink := newMemSink()
	ctx := NewContext(sink)
	ctx.canWrite = true

	_, err := in.ProcessPage(ctx, winAnsi, []contentstream.Operation{
		op("Tj", core.String("Introduction")), op("Tj", core.Int(1)),
	})
	require.Error(t, err)
	assert.Equal(t, "", sink.content(chapter.PrefaceFile))

	// The buffer does not leak into the next page.
	res, err := in.ProcessPage(ctx, winAnsi, []contentstream.Operation{op("Tj", core.String("next"))})
	require.NoError(t, err)
	assert.Equal(t, "next", res.Text)
}

func TestProcessPageSinkFailure(t *testing.T) {
	in := NewInterpreter(chapter.New(), nil)
	sink := newMemSink()
	sink.failOn = "04.txt"

	_, err := in.ProcessPage(NewContext(sink), winAnsi, textPage("Chapter 4"))
	assert.EqualError(t, err, "disk full")
}
