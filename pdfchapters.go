// Package pdfchapters splits a PDF book into one plain-text file per
// chapter.
//
// Basic usage:
//
//	summary, err := pdfchapters.Open("book.pdf").Run(ctx)
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println("wrote", summary.Files, "to", summary.Folder)
//
// With options:
//
//	summary, err := pdfchapters.Open("book.pdf").
//	    OutputRoot("/srv/books").
//	    DistinctAppendices().
//	    Run(ctx)
//
// The text of every page is gathered from its Tj and TJ operators. A page
// that starts with "Introduction", "Chapter NN", "Appendix", "Part " or
// "Index" opens, resumes or stops output, and the page is then written to
// the current file of the folder named after the input.
//
// For lower-level access the reader, extract and chapter packages can be
// used directly.
package pdfchapters

import (
	"github.com/tsawler/pdfchapters/reader"
)

// Open returns a Splitter for the PDF at filename. Nothing is read until
// Run is called.
//
// Example:
//
//	summary, err := pdfchapters.Open("book.pdf").Run(context.Background())
func Open(filename string) *Splitter {
	return &Splitter{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader returns a Splitter over an already opened reader. source
// names the document; its base name without extension becomes the output
// folder, so it is required. The caller keeps ownership of r and must
// close it.
//
// Example:
//
//	r, err := reader.NewReader(data)
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	summary, err := pdfchapters.FromReader(r, "book.pdf").Run(ctx)
func FromReader(r *reader.Reader, source string) *Splitter {
	return &Splitter{
		filename: source,
		reader:   r,
		options:  defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for scripts and
// tests.
//
// Example:
//
//	summary := pdfchapters.Must(pdfchapters.Open("book.pdf").Run(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
