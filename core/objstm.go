package core

import (
	"fmt"
	"io"
	"strconv"
)

// ObjectStream gives access to the objects packed inside a /Type /ObjStm
// stream. The stream is decoded once, on construction.
type ObjectStream struct {
	data    []byte
	first   int
	numbers []int
	offsets []int
}

func NewObjectStream(s *Stream) (*ObjectStream, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil object stream", ErrSyntax)
	}
	if typ, _ := s.Dict.Name("Type"); typ != "ObjStm" {
		return nil, fmt.Errorf("%w: stream /Type %q is not ObjStm", ErrSyntax, typ)
	}
	n, ok := s.Dict.Int("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("%w: object stream /N missing", ErrSyntax)
	}
	first, ok := s.Dict.Int("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("%w: object stream /First missing", ErrSyntax)
	}

	data, err := s.Decode()
	if err != nil {
		return nil, fmt.Errorf("object stream: %w", err)
	}
	if int(first) > len(data) {
		return nil, fmt.Errorf("%w: /First %d beyond %d decoded bytes", ErrSyntax, first, len(data))
	}

	os := &ObjectStream{data: data, first: int(first)}
	sc := NewScanner(data[:first])
	for i := 0; i < int(n); i++ {
		num, err1 := sc.Next()
		off, err2 := sc.Next()
		if err1 != nil || err2 != nil || num.Kind != TokInteger || off.Kind != TokInteger {
			return nil, fmt.Errorf("%w: object stream header pair %d", ErrSyntax, i)
		}
		nv, _ := strconv.Atoi(string(num.Value))
		ov, _ := strconv.Atoi(string(off.Value))
		os.numbers = append(os.numbers, nv)
		os.offsets = append(os.offsets, ov)
	}
	return os, nil
}

// Len returns the number of objects in the stream.
func (os *ObjectStream) Len() int { return len(os.numbers) }

// At parses the object at position index and returns its object number.
func (os *ObjectStream) At(index int) (int, Object, error) {
	if index < 0 || index >= len(os.numbers) {
		return 0, nil, fmt.Errorf("%w: object stream index %d of %d", ErrSyntax, index, len(os.numbers))
	}
	start := os.first + os.offsets[index]
	if start > len(os.data) {
		return 0, nil, fmt.Errorf("%w: object %d offset beyond stream", ErrSyntax, os.numbers[index])
	}
	p := NewParser(os.data)
	p.Scanner().Seek(start)
	obj, err := p.ParseObject()
	if err == io.EOF {
		return 0, nil, fmt.Errorf("%w: object %d is empty", ErrSyntax, os.numbers[index])
	}
	if err != nil {
		return 0, nil, err
	}
	return os.numbers[index], obj, nil
}

// Lookup finds an object by number, using hint as the expected index.
func (os *ObjectStream) Lookup(num, hint int) (Object, error) {
	if hint >= 0 && hint < len(os.numbers) && os.numbers[hint] == num {
		_, obj, err := os.At(hint)
		return obj, err
	}
	for i, n := range os.numbers {
		if n == num {
			_, obj, err := os.At(i)
			return obj, err
		}
	}
	return nil, fmt.Errorf("%w: object %d not in object stream", ErrSyntax, num)
}
