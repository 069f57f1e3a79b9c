package pdfchapters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdfchapters/extract"
	"github.com/tsawler/pdfchapters/internal/config"
	"github.com/tsawler/pdfchapters/internal/pdftest"
	"github.com/tsawler/pdfchapters/reader"
)

// bookPages is a short book: front matter, an introduction, two chapters
// split by a part title, an appendix and an index.
var bookPages = []string{
	pdftest.Text("Title Page"),
	pdftest.Text("Introduction") + pdftest.Text("Welcome"),
	pdftest.Text("Chapter 1") + pdftest.Text("One"),
	pdftest.Text("More of one"),
	pdftest.Text("Part II"),
	pdftest.Text("Chapter 12: Twelve"),
	pdftest.Text("Appendix A"),
	pdftest.Text("Index"),
	pdftest.Text("aardvark, 3"),
}

var bookFiles = map[string]string{
	"00.txt": "Introduction\nWelcome\n",
	"01.txt": "Chapter 1\nOne\nMore of one\n",
	"12.txt": "Chapter 12: Twelve\n",
	"A.txt":  "Appendix A\n",
}

func writePDF(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// readFolder returns the name and content of every file in dir.
func readFolder(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		out[e.Name()] = string(data)
	}
	return out
}

func TestRunBook(t *testing.T) {
	book := pdftest.NewBook(bookPages...)

	tests := []struct {
		name string
		data []byte
	}{
		{"classic xref", book.Bytes()},
		{"xref stream", book.Compressed()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := writePDF(t, dir, "book.pdf", tt.data)
			out := filepath.Join(dir, "out")

			summary, err := Open(src).OutputRoot(out).Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, filepath.Join(out, "book"), summary.Folder)
			assert.Equal(t, bookFiles, readFolder(t, summary.Folder))
			assert.Equal(t, 9, summary.Pages)
			assert.Equal(t, 5, summary.Written)
			assert.Equal(t, 4, summary.Suppressed)
			assert.Equal(t, []string{"00.txt", "01.txt", "12.txt", "A.txt"}, summary.Files)
			assert.Equal(t, "1.7", summary.Version)
			assert.False(t, summary.Repaired)
			assert.NotEmpty(t, summary.RunID)

			var total int64
			for _, content := range bookFiles {
				total += int64(len(content))
			}
			assert.Equal(t, total, summary.Bytes)
		})
	}
}

func TestRunIsRepeatable(t *testing.T) {
	dir := t.TempDir()
	src := writePDF(t, dir, "book.pdf", pdftest.NewBook(bookPages...).Bytes())
	splitter := Open(src).OutputRoot(dir)

	first, err := splitter.Run(context.Background())
	require.NoError(t, err)
	before := readFolder(t, first.Folder)

	require.NoError(t, os.WriteFile(filepath.Join(first.Folder, "stale.txt"), []byte("old"), 0o644))

	second, err := splitter.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, readFolder(t, second.Folder))
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRunNoTextOperators(t *testing.T) {
	dir := t.TempDir()
	src := writePDF(t, dir, "plain.pdf", pdftest.NewBook(
		"0 0 612 792 re f\n",
		"BT /F1 12 Tf 72 720 Td ET\n",
	).Bytes())

	summary, err := Open(src).OutputRoot(dir).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"00.txt": ""}, readFolder(t, summary.Folder))
	assert.Equal(t, 2, summary.Pages)
	assert.Zero(t, summary.Written)
	assert.Zero(t, summary.Suppressed)
}

func TestRunAppendices(t *testing.T) {
	pages := []string{
		pdftest.Text("Chapter 1"),
		pdftest.Text("Appendix A") + pdftest.Text("first"),
		pdftest.Text("Appendix B") + pdftest.Text("second"),
	}

	tests := []struct {
		name     string
		splitter func(src string) *Splitter
		want     map[string]string
	}{
		{
			name:     "shared file",
			splitter: func(src string) *Splitter { return Open(src) },
			want: map[string]string{
				"00.txt": "",
				"01.txt": "Chapter 1\n",
				"A.txt":  "Appendix B\nsecond\n",
			},
		},
		{
			name:     "distinct files",
			splitter: func(src string) *Splitter { return Open(src).DistinctAppendices() },
			want: map[string]string{
				"00.txt": "",
				"01.txt": "Chapter 1\n",
				"A.txt":  "Appendix A\nfirst\n",
				"B.txt":  "Appendix B\nsecond\n",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := writePDF(t, dir, "appx.pdf", pdftest.NewBook(pages...).Bytes())
			summary, err := tt.splitter(src).OutputRoot(dir).Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, readFolder(t, summary.Folder))
		})
	}
}

func TestFromReader(t *testing.T) {
	r, err := reader.NewReader(pdftest.NewBook(bookPages...).Compressed())
	require.NoError(t, err)
	defer r.Close()

	dir := t.TempDir()
	summary, err := FromReader(r, "/somewhere/else/novel.pdf").OutputRoot(dir).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "novel"), summary.Folder)
	assert.Equal(t, bookFiles, readFolder(t, summary.Folder))

	// The reader stays usable for the caller.
	n, err := r.PageCount()
	require.NoError(t, err)
	assert.Equal(t, len(bookPages), n)
}

func TestConfigure(t *testing.T) {
	dir := t.TempDir()
	src := writePDF(t, dir, "cfg.pdf", pdftest.NewBook(
		pdftest.Text("Appendix A"),
		pdftest.Text("Appendix B"),
	).Bytes())

	cfg := config.NewDefaultConfig()
	cfg.Output.Root = filepath.Join(dir, "configured")
	cfg.Classifier.DistinctAppendices = true

	summary, err := Open(src).Configure(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "configured", "cfg"), summary.Folder)
	assert.Equal(t, []string{"00.txt", "A.txt", "B.txt"}, summary.Files)
}

func TestSplitterIsImmutable(t *testing.T) {
	base := Open("book.pdf")
	custom := base.OutputRoot("/tmp/x").DistinctAppendices().MinFontHeight(5)

	assert.Equal(t, ".", base.options.outputRoot)
	assert.False(t, base.options.distinctAppendices)
	assert.Zero(t, base.options.minFontHeight)
	assert.Equal(t, "/tmp/x", custom.options.outputRoot)
	assert.True(t, custom.options.distinctAppendices)
	assert.Equal(t, 5.0, custom.options.minFontHeight)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) *Splitter
		want  error
	}{
		{
			name:  "no input",
			setup: func(t *testing.T, dir string) *Splitter { return Open("") },
			want:  ErrArgumentMissing,
		},
		{
			name: "reader without source",
			setup: func(t *testing.T, dir string) *Splitter {
				r, err := reader.NewReader(pdftest.NewBook(bookPages...).Bytes())
				require.NoError(t, err)
				t.Cleanup(func() { r.Close() })
				return FromReader(r, "").OutputRoot(dir)
			},
			want: ErrArgumentMissing,
		},
		{
			name: "source names no folder",
			setup: func(t *testing.T, dir string) *Splitter {
				r, err := reader.NewReader(pdftest.NewBook(bookPages...).Bytes())
				require.NoError(t, err)
				t.Cleanup(func() { r.Close() })
				return FromReader(r, "..").OutputRoot(dir)
			},
			want: ErrIO,
		},
		{
			name: "missing file",
			setup: func(t *testing.T, dir string) *Splitter {
				return Open(filepath.Join(dir, "absent.pdf")).OutputRoot(dir)
			},
			want: ErrDocumentLoad,
		},
		{
			name: "not a pdf",
			setup: func(t *testing.T, dir string) *Splitter {
				return Open(writePDF(t, dir, "notes.pdf", []byte("just some notes\n"))).OutputRoot(dir)
			},
			want: ErrDocumentLoad,
		},
		{
			name: "no catalog",
			setup: func(t *testing.T, dir string) *Splitter {
				return Open(writePDF(t, dir, "empty.pdf", []byte("%PDF-1.4\n%%EOF\n"))).OutputRoot(dir)
			},
			want: ErrDocumentLoad,
		},
		{
			name: "output root is a file",
			setup: func(t *testing.T, dir string) *Splitter {
				src := writePDF(t, dir, "book.pdf", pdftest.NewBook(bookPages...).Bytes())
				blocker := writePDF(t, dir, "blocker", []byte("x"))
				return Open(src).OutputRoot(blocker)
			},
			want: ErrIO,
		},
		{
			name: "bad operand",
			setup: func(t *testing.T, dir string) *Splitter {
				src := writePDF(t, dir, "bad.pdf", pdftest.NewBook(
					pdftest.Text("Chapter 1"),
					"BT /F1 12 Tf 42 Tj ET\n",
				).Bytes())
				return Open(src).OutputRoot(dir)
			},
			want: ErrOperandType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := tt.setup(t, t.TempDir()).Run(context.Background())
			assert.Nil(t, summary)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRunKeepsOutputRoot(t *testing.T) {
	r, err := reader.NewReader(pdftest.NewBook(bookPages...).Bytes())
	require.NoError(t, err)
	defer r.Close()

	for _, source := range []string{"", "..", "/books/.."} {
		t.Run(source, func(t *testing.T) {
			dir := t.TempDir()
			keep := filepath.Join(dir, "keep.txt")
			require.NoError(t, os.WriteFile(keep, []byte("x"), 0o644))

			_, err := FromReader(r, source).OutputRoot(dir).Run(context.Background())
			assert.Error(t, err)
			assert.FileExists(t, keep)
		})
	}
}

func TestRunOperandErrorDetail(t *testing.T) {
	dir := t.TempDir()
	src := writePDF(t, dir, "bad.pdf", pdftest.NewBook(
		pdftest.Text("Chapter 1"),
		"BT /F1 12 Tf [(ok)] Tj ET\n",
	).Bytes())

	_, err := Open(src).OutputRoot(dir).Run(context.Background())
	var opErr *extract.OperandError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, 2, opErr.Page)
	assert.Equal(t, "Tj", opErr.Operator)
	assert.Equal(t, "array", opErr.Got)

	// Text from pages before the failure has already been written.
	data, err := os.ReadFile(filepath.Join(dir, "bad", "01.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Chapter 1\n", string(data))
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	src := writePDF(t, dir, "book.pdf", pdftest.NewBook(bookPages...).Bytes())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Open(src).OutputRoot(dir).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMust(t *testing.T) {
	assert.Equal(t, 3, Must(3, nil))
	assert.Panics(t, func() { Must(0, ErrArgumentMissing) })
}
