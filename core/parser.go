package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

const maxNesting = 256

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("pdf syntax error")

// ReferenceResolver looks up an indirect object. The parser uses it for
// stream /Length values stored as references.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithReferenceResolver sets the resolver used for indirect stream lengths.
func WithReferenceResolver(r ReferenceResolver) ParserOption {
	return func(p *Parser) { p.resolver = r }
}

// WithoutReferences disables "n g R" recognition. Content streams have no
// indirect references, so three consecutive operands there are never
// folded together.
func WithoutReferences() ParserOption {
	return func(p *Parser) { p.noRefs = true }
}

// Parser builds objects from the tokens of a Scanner.
type Parser struct {
	sc       *Scanner
	resolver ReferenceResolver
	noRefs   bool
	depth    int
}

func NewParser(data []byte, opts ...ParserOption) *Parser {
	p := &Parser{sc: NewScanner(data)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Scanner exposes the underlying scanner so callers can interleave raw
// token reads with object parsing.
func (p *Parser) Scanner() *Scanner { return p.sc }

func (p *Parser) errorf(pos int, format string, args ...interface{}) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, pos, fmt.Sprintf(format, args...))
}

// ParseObject parses the next object. It returns io.EOF when the input is
// exhausted before any token.
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.sc.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return p.objectFrom(tok)
}

// ObjectFrom finishes parsing an object whose first token has already been
// read.
func (p *Parser) ObjectFrom(tok Token) (Object, error) {
	return p.objectFrom(tok)
}

func (p *Parser) objectFrom(tok Token) (Object, error) {
	switch tok.Kind {
	case TokEOF:
		return nil, io.EOF
	case TokInteger:
		n, _ := strconv.ParseInt(string(tok.Value), 10, 64)
		if !p.noRefs {
			if ref, ok := p.tryRef(n); ok {
				return ref, nil
			}
		}
		return Int(n), nil
	case TokReal:
		f, _ := strconv.ParseFloat(string(tok.Value), 64)
		return Real(f), nil
	case TokString:
		return String(tok.Value), nil
	case TokName:
		return Name(tok.Value), nil
	case TokArrayOpen:
		return p.array(tok.Pos)
	case TokDictOpen:
		return p.dict(tok.Pos)
	case TokKeyword:
		switch string(tok.Value) {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			return Null{}, nil
		}
		return nil, p.errorf(tok.Pos, "unexpected keyword %q", tok.Value)
	default:
		return nil, p.errorf(tok.Pos, "unexpected token")
	}
}

// tryRef checks whether the integer just read starts "n g R". On a miss
// the scanner is rewound.
func (p *Parser) tryRef(num int64) (Object, bool) {
	save := p.sc.Pos()
	gen, err := p.sc.Next()
	if err == nil && gen.Kind == TokInteger {
		r, err := p.sc.Next()
		if err == nil && r.is("R") {
			g, _ := strconv.Atoi(string(gen.Value))
			return IndirectRef{Number: int(num), Generation: g}, true
		}
	}
	p.sc.Seek(save)
	return nil, false
}

func (p *Parser) enter(pos int) error {
	p.depth++
	if p.depth > maxNesting {
		return p.errorf(pos, "nesting deeper than %d", maxNesting)
	}
	return nil
}

func (p *Parser) array(start int) (Object, error) {
	if err := p.enter(start); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	arr := Array{}
	for {
		tok, err := p.sc.Next()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		switch tok.Kind {
		case TokArrayClose:
			return arr, nil
		case TokEOF:
			return nil, p.errorf(start, "unterminated array")
		}
		obj, err := p.objectFrom(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) dict(start int) (Object, error) {
	if err := p.enter(start); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	d := Dict{}
	for {
		tok, err := p.sc.Next()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		switch tok.Kind {
		case TokDictClose:
			return d, nil
		case TokEOF:
			return nil, p.errorf(start, "unterminated dictionary")
		case TokName:
		default:
			return nil, p.errorf(tok.Pos, "dictionary key is not a name")
		}
		key := string(tok.Value)

		vtok, err := p.sc.Next()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		if vtok.Kind == TokDictClose {
			d[key] = Null{}
			return d, nil
		}
		val, err := p.objectFrom(vtok)
		if err != nil {
			return nil, err
		}
		d[key] = val
	}
}

// ParseIndirectObject parses "n g obj <object> endobj", reading a stream
// body when the object is a dictionary followed by "stream".
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	start := p.sc.Pos()
	num, err := p.sc.Next()
	if err != nil || num.Kind != TokInteger {
		return nil, p.errorf(start, "expected object number")
	}
	gen, err := p.sc.Next()
	if err != nil || gen.Kind != TokInteger {
		return nil, p.errorf(start, "expected generation number")
	}
	kw, err := p.sc.Next()
	if err != nil || !kw.is("obj") {
		return nil, p.errorf(start, "expected obj keyword")
	}

	obj, err := p.ParseObject()
	if err == io.EOF {
		return nil, p.errorf(start, "object body missing")
	}
	if err != nil {
		return nil, err
	}

	after := p.sc.Pos()
	tok, err := p.sc.Next()
	if err == nil && tok.is("stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, p.errorf(tok.Pos, "stream keyword after %s", KindOf(obj))
		}
		s, err := p.streamBody(dict)
		if err != nil {
			return nil, err
		}
		obj = s
		after = p.sc.Pos()
		tok, err = p.sc.Next()
	}
	// A missing endobj is common enough in the wild to tolerate.
	if err != nil || !tok.is("endobj") {
		p.sc.Seek(after)
	}

	n, _ := strconv.Atoi(string(num.Value))
	g, _ := strconv.Atoi(string(gen.Value))
	return &IndirectObject{Ref: IndirectRef{Number: n, Generation: g}, Object: obj}, nil
}

var endstream = []byte("endstream")

// streamBody reads the bytes between "stream" and "endstream". When /Length
// is absent or wrong the data runs up to the next endstream keyword.
func (p *Parser) streamBody(dict Dict) (*Stream, error) {
	p.sc.SkipEOL()
	start := p.sc.Pos()

	if n, ok := p.streamLength(dict); ok && n >= 0 && start+n <= p.sc.Len() {
		p.sc.Seek(start + n)
		if p.sc.HasPrefixAfterSpace(endstream) {
			p.sc.Seek(start)
			data, _ := p.sc.Read(n)
			if _, err := p.sc.Next(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
			}
			return &Stream{Dict: dict, Data: data}, nil
		}
		p.sc.Seek(start)
	}

	end := p.sc.Index(endstream)
	if end < 0 {
		return nil, p.errorf(start, "stream without endstream")
	}
	data, _ := p.sc.Read(end - start)
	data = bytes.TrimSuffix(data, []byte("\n"))
	data = bytes.TrimSuffix(data, []byte("\r"))
	p.sc.Seek(end + len(endstream))
	return &Stream{Dict: dict, Data: data}, nil
}

func (p *Parser) streamLength(dict Dict) (int, bool) {
	switch v := dict.Get("Length").(type) {
	case Int:
		return int(v), true
	case IndirectRef:
		if p.resolver == nil {
			return 0, false
		}
		obj, err := p.resolver.ResolveReference(v)
		if err != nil {
			return 0, false
		}
		n, ok := obj.(Int)
		return int(n), ok
	}
	return 0, false
}
