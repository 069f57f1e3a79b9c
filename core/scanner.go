package core

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokInteger
	TokReal
	TokString // literal or hex string; Value holds the decoded bytes
	TokName   // Value excludes the slash, #xx escapes resolved
	TokArrayOpen
	TokArrayClose
	TokDictOpen
	TokDictClose
	TokKeyword // operators, true/false/null, obj, R, stream ...
)

// Token is one lexical unit. Pos is the offset of its first byte.
type Token struct {
	Kind  TokenKind
	Value []byte
	Pos   int
}

func (t Token) is(keyword string) bool {
	return t.Kind == TokKeyword && string(t.Value) == keyword
}

// Scanner splits PDF syntax held in memory into tokens. It can be
// repositioned freely, which the parser relies on for reference lookahead.
type Scanner struct {
	data []byte
	pos  int
}

func NewScanner(data []byte) *Scanner {
	return &Scanner{data: data}
}

func (s *Scanner) Pos() int     { return s.pos }
func (s *Scanner) Seek(pos int) { s.pos = pos }
func (s *Scanner) Len() int     { return len(s.data) }

// Next returns the next token, skipping whitespace and comments.
func (s *Scanner) Next() (Token, error) {
	s.skipSpace()
	if s.pos >= len(s.data) {
		return Token{Kind: TokEOF, Pos: s.pos}, nil
	}

	start := s.pos
	c := s.data[s.pos]
	switch c {
	case '[':
		s.pos++
		return Token{Kind: TokArrayOpen, Pos: start}, nil
	case ']':
		s.pos++
		return Token{Kind: TokArrayClose, Pos: start}, nil
	case '{', '}':
		s.pos++
		return Token{Kind: TokKeyword, Value: []byte{c}, Pos: start}, nil
	case '(':
		return s.literal()
	case '<':
		if s.peekAt(1) == '<' {
			s.pos += 2
			return Token{Kind: TokDictOpen, Pos: start}, nil
		}
		return s.hex()
	case '>':
		if s.peekAt(1) == '>' {
			s.pos += 2
			return Token{Kind: TokDictClose, Pos: start}, nil
		}
		return Token{}, fmt.Errorf("offset %d: stray '>'", start)
	case ')':
		return Token{}, fmt.Errorf("offset %d: unbalanced ')'", start)
	case '/':
		return s.name()
	}

	word := s.regular()
	if looksNumeric(word) {
		if _, err := strconv.ParseInt(string(word), 10, 64); err == nil {
			return Token{Kind: TokInteger, Value: word, Pos: start}, nil
		}
		if _, err := strconv.ParseFloat(string(word), 64); err == nil {
			return Token{Kind: TokReal, Value: word, Pos: start}, nil
		}
	}
	return Token{Kind: TokKeyword, Value: word, Pos: start}, nil
}

// SkipEOL consumes the single end-of-line marker that follows the "stream"
// keyword: LF, CRLF, or (tolerated) a lone CR.
func (s *Scanner) SkipEOL() {
	for s.pos < len(s.data) && (s.data[s.pos] == ' ' || s.data[s.pos] == '\t') {
		s.pos++
	}
	if s.pos < len(s.data) && s.data[s.pos] == '\r' {
		s.pos++
	}
	if s.pos < len(s.data) && s.data[s.pos] == '\n' {
		s.pos++
	}
}

// Read returns the next n raw bytes.
func (s *Scanner) Read(n int) ([]byte, error) {
	if n < 0 || s.pos+n > len(s.data) {
		return nil, io.ErrUnexpectedEOF
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// Index reports the offset of the next occurrence of sep at or after the
// current position, or -1.
func (s *Scanner) Index(sep []byte) int {
	i := bytes.Index(s.data[s.pos:], sep)
	if i < 0 {
		return -1
	}
	return s.pos + i
}

// HasPrefixAfterSpace reports whether prefix follows the current position
// once whitespace is skipped. The position is left unchanged.
func (s *Scanner) HasPrefixAfterSpace(prefix []byte) bool {
	save := s.pos
	s.skipSpace()
	ok := bytes.HasPrefix(s.data[s.pos:], prefix)
	s.pos = save
	return ok
}

func (s *Scanner) peekAt(off int) byte {
	if s.pos+off < len(s.data) {
		return s.data[s.pos+off]
	}
	return 0
}

func (s *Scanner) skipSpace() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case isSpace(c):
			s.pos++
		case c == '%':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
		default:
			return
		}
	}
}

func (s *Scanner) regular() []byte {
	start := s.pos
	for s.pos < len(s.data) && !isSpace(s.data[s.pos]) && !isDelim(s.data[s.pos]) {
		s.pos++
	}
	return s.data[start:s.pos]
}

func (s *Scanner) literal() (Token, error) {
	start := s.pos
	s.pos++ // (
	var buf []byte
	depth := 1
	for {
		if s.pos >= len(s.data) {
			return Token{}, fmt.Errorf("offset %d: unterminated string", start)
		}
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '(':
			depth++
			buf = append(buf, c)
		case ')':
			depth--
			if depth == 0 {
				return Token{Kind: TokString, Value: buf, Pos: start}, nil
			}
			buf = append(buf, c)
		case '\r':
			// An unescaped end-of-line in a literal reads as a single LF.
			if s.peekAt(0) == '\n' {
				s.pos++
			}
			buf = append(buf, '\n')
		case '\\':
			buf = s.escape(buf)
		default:
			buf = append(buf, c)
		}
	}
}

func (s *Scanner) escape(buf []byte) []byte {
	if s.pos >= len(s.data) {
		return buf
	}
	c := s.data[s.pos]
	s.pos++
	switch c {
	case 'n':
		return append(buf, '\n')
	case 'r':
		return append(buf, '\r')
	case 't':
		return append(buf, '\t')
	case 'b':
		return append(buf, '\b')
	case 'f':
		return append(buf, '\f')
	case '\r':
		if s.peekAt(0) == '\n' {
			s.pos++
		}
		return buf
	case '\n':
		return buf
	}
	if c >= '0' && c <= '7' {
		v := int(c - '0')
		for i := 0; i < 2 && s.pos < len(s.data); i++ {
			d := s.data[s.pos]
			if d < '0' || d > '7' {
				break
			}
			v = v*8 + int(d-'0')
			s.pos++
		}
		return append(buf, byte(v))
	}
	// \( \) \\ and unknown escapes keep the character.
	return append(buf, c)
}

func (s *Scanner) hex() (Token, error) {
	start := s.pos
	s.pos++ // <
	var buf []byte
	var hi byte
	half := false
	for {
		if s.pos >= len(s.data) {
			return Token{}, fmt.Errorf("offset %d: unterminated hex string", start)
		}
		c := s.data[s.pos]
		s.pos++
		if c == '>' {
			break
		}
		if isSpace(c) {
			continue
		}
		v, ok := hexValue(c)
		if !ok {
			return Token{}, fmt.Errorf("offset %d: invalid hex digit %q", s.pos-1, c)
		}
		if half {
			buf = append(buf, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		buf = append(buf, hi<<4)
	}
	return Token{Kind: TokString, Value: buf, Pos: start}, nil
}

func (s *Scanner) name() (Token, error) {
	start := s.pos
	s.pos++ // /
	raw := s.regular()
	if bytes.IndexByte(raw, '#') < 0 {
		return Token{Kind: TokName, Value: raw, Pos: start}, nil
	}
	buf := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			h, ok1 := hexValue(raw[i+1])
			l, ok2 := hexValue(raw[i+2])
			if ok1 && ok2 {
				buf = append(buf, h<<4|l)
				i += 2
				continue
			}
		}
		buf = append(buf, raw[i])
	}
	return Token{Kind: TokName, Value: buf, Pos: start}, nil
}

func looksNumeric(word []byte) bool {
	if len(word) == 0 {
		return false
	}
	for _, c := range word {
		if !(c >= '0' && c <= '9') && c != '.' && c != '-' && c != '+' {
			return false
		}
	}
	return true
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func isSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
