package pdfchapters

import (
	"errors"

	"github.com/tsawler/pdfchapters/extract"
	"github.com/tsawler/pdfchapters/output"
)

var (
	// ErrArgumentMissing is returned when no input document is named.
	ErrArgumentMissing = errors.New("no input file given")

	// ErrDocumentLoad wraps failures to open, parse or walk the input.
	ErrDocumentLoad = errors.New("document load failed")

	// ErrIO wraps failures to create or write the output files.
	ErrIO = output.ErrIO

	// ErrOperandType is wrapped by *extract.OperandError when a text
	// operator carries an operand of the wrong type.
	ErrOperandType = extract.ErrOperandType
)
