package contentstream

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tsawler/pdfchapters/core"
)

// Operation is one operator with the operands that preceded it.
type Operation struct {
	Operator string
	Operands []core.Object
}

// String renders the operation in content stream syntax.
func (op Operation) String() string {
	parts := make([]string, 0, len(op.Operands)+1)
	for _, o := range op.Operands {
		parts = append(parts, o.String())
	}
	parts = append(parts, op.Operator)
	return strings.Join(parts, " ")
}

// Parser reads operations from one content stream. Each Parser owns its
// operand stack, so parsers are independent of each other.
type Parser struct {
	p        *core.Parser
	operands []core.Object
	ops      []Operation
}

func NewParser(data []byte) *Parser {
	return &Parser{p: core.NewParser(data, core.WithoutReferences())}
}

// Parse is shorthand for NewParser(data).Parse().
func Parse(data []byte) ([]Operation, error) {
	return NewParser(data).Parse()
}

// Parse returns every operation in stream order. Operands left over at the
// end of the stream without an operator are dropped.
func (p *Parser) Parse() ([]Operation, error) {
	sc := p.p.Scanner()
	for {
		tok, err := sc.Next()
		if err != nil {
			return nil, fmt.Errorf("content stream: %w", err)
		}
		if tok.Kind == core.TokEOF {
			return p.ops, nil
		}

		if tok.Kind == core.TokKeyword && !isLiteralKeyword(tok.Value) {
			op := string(tok.Value)
			if op == "BI" {
				if err := p.inlineImage(); err != nil {
					return nil, err
				}
				continue
			}
			p.emit(op)
			continue
		}

		obj, err := p.p.ObjectFrom(tok)
		if err != nil {
			return nil, fmt.Errorf("content stream operand at offset %d: %w", tok.Pos, err)
		}
		p.operands = append(p.operands, obj)
	}
}

func (p *Parser) emit(op string) {
	p.ops = append(p.ops, Operation{Operator: op, Operands: p.operands})
	p.operands = nil
}

// inlineImage reads the key/value pairs after BI up to ID, then skips the
// image data through the EI that follows it.
func (p *Parser) inlineImage() error {
	sc := p.p.Scanner()
	dict := core.Dict{}
	for {
		tok, err := sc.Next()
		if err != nil {
			return fmt.Errorf("inline image: %w", err)
		}
		switch {
		case tok.Kind == core.TokEOF:
			return fmt.Errorf("inline image: %w: missing ID", core.ErrSyntax)
		case tok.Kind == core.TokKeyword && string(tok.Value) == "ID":
			if err := skipImageData(sc); err != nil {
				return err
			}
			p.operands = []core.Object{dict}
			p.emit("BI")
			return nil
		case tok.Kind != core.TokName:
			return fmt.Errorf("inline image: %w: key at offset %d is not a name", core.ErrSyntax, tok.Pos)
		}
		val, err := p.p.ParseObject()
		if err != nil {
			return fmt.Errorf("inline image /%s: %w", tok.Value, err)
		}
		dict[string(tok.Value)] = val
	}
}

// skipImageData advances past the first "EI" delimited by whitespace on both
// sides, which ends the binary data after ID.
func skipImageData(sc *core.Scanner) error {
	sc.Seek(sc.Pos() + 1) // single whitespace after ID
	for {
		i := sc.Index([]byte("EI"))
		if i < 0 {
			return fmt.Errorf("inline image: %w: missing EI", core.ErrSyntax)
		}
		sc.Seek(i)
		before := byte(' ')
		if i > 0 {
			before = peekByte(sc, -1)
		}
		after := peekByte(sc, 2)
		sc.Seek(i + 2)
		if isWhite(before) && (after == 0 || isWhite(after)) {
			return nil
		}
	}
}

func peekByte(sc *core.Scanner, off int) byte {
	pos := sc.Pos()
	defer sc.Seek(pos)
	if pos+off < 0 || pos+off >= sc.Len() {
		return 0
	}
	sc.Seek(pos + off)
	b, err := sc.Read(1)
	if err != nil {
		return 0
	}
	return b[0]
}

func isWhite(c byte) bool {
	return bytes.IndexByte([]byte(" \t\r\n\f\x00"), c) >= 0
}

func isLiteralKeyword(v []byte) bool {
	switch string(v) {
	case "true", "false", "null":
		return true
	}
	return false
}
