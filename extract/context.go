package extract

import (
	"strings"

	"github.com/tsawler/pdfchapters/chapter"
)

// Sink receives chapter text. *output.Sink implements it.
type Sink interface {
	CreateFile(name string) error
	Write(text string) error
}

// Stats counts what happened to the pages of a run.
type Stats struct {
	Pages      int
	Written    int // pages whose text went to a file
	Suppressed int // pages with text that the write gate discarded
}

// Context is the state carried from page to page for one document.
type Context struct {
	sink     Sink
	text     strings.Builder
	canWrite bool
	current  string
	Stats    Stats
}

// NewContext starts with the preface file current and writing off, so
// front matter before the first marker is dropped.
func NewContext(sink Sink) *Context {
	return &Context{sink: sink, current: chapter.PrefaceFile}
}

func (c *Context) CanWrite() bool { return c.canWrite }

// CurrentFile returns the name of the file text is written to.
func (c *Context) CurrentFile() string { return c.current }

// apply carries out a classifier decision.
func (c *Context) apply(d chapter.Decision) error {
	if !d.Matched {
		return nil
	}
	if d.NewFile != "" {
		if err := c.sink.CreateFile(d.NewFile); err != nil {
			return err
		}
		c.current = d.NewFile
	}
	if d.CanWrite != nil {
		c.canWrite = *d.CanWrite
	}
	return nil
}

// endLine terminates the buffered text with one newline. An empty buffer
// stays empty.
func (c *Context) endLine() {
	s := c.text.String()
	if s != "" && s[len(s)-1] != '\n' {
		c.text.WriteByte('\n')
	}
}

// PageState is the text state of one page. It starts empty on every page.
type PageState struct {
	// Encoding of the active font; nil until a Tf names a known font.
	Encoding *string
	// Height is the active font's cap height scaled by its size, or 0
	// when unknown.
	Height float64
}
