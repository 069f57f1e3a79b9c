package core

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// ErrNoXRef is returned when no usable cross-reference data exists.
var ErrNoXRef = errors.New("cross-reference data not found")

// EntryKind says where an object lives.
type EntryKind int

const (
	EntryFree       EntryKind = iota
	EntryInUse                // at a byte offset in the file
	EntryCompressed           // inside an object stream
)

// XRefEntry locates one object. Offset and Generation apply to in-use
// entries; Stream and Index to compressed ones.
type XRefEntry struct {
	Kind       EntryKind
	Offset     int64
	Generation int
	Stream     int
	Index      int
}

// XRefTable maps object numbers to locations and carries the trailer.
type XRefTable struct {
	Entries map[int]XRefEntry
	Trailer Dict
}

func NewXRefTable() *XRefTable {
	return &XRefTable{Entries: make(map[int]XRefEntry), Trailer: Dict{}}
}

func (t *XRefTable) Get(num int) (XRefEntry, bool) {
	e, ok := t.Entries[num]
	return e, ok
}

func (t *XRefTable) Size() int { return len(t.Entries) }

// absorb adds entries from an older section without overriding newer ones.
func (t *XRefTable) absorb(older *XRefTable) {
	for num, e := range older.Entries {
		if _, ok := t.Entries[num]; !ok {
			t.Entries[num] = e
		}
	}
	for k, v := range older.Trailer {
		if _, ok := t.Trailer[k]; !ok && k != "Prev" && k != "XRefStm" {
			t.Trailer[k] = v
		}
	}
}

// FindStartXRef returns the offset recorded after the last startxref keyword.
func FindStartXRef(data []byte) (int64, error) {
	tail := data
	if len(tail) > 2048 {
		tail = tail[len(tail)-2048:]
	}
	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return 0, fmt.Errorf("%w: startxref missing", ErrNoXRef)
	}
	sc := NewScanner(tail[i+len("startxref"):])
	tok, err := sc.Next()
	if err != nil || tok.Kind != TokInteger {
		return 0, fmt.Errorf("%w: startxref offset unreadable", ErrNoXRef)
	}
	off, _ := strconv.ParseInt(string(tok.Value), 10, 64)
	if off < 0 || off >= int64(len(data)) {
		return 0, fmt.Errorf("%w: startxref offset %d out of range", ErrNoXRef, off)
	}
	return off, nil
}

// LoadXRef reads every cross-reference section reachable from startxref,
// newest first, and merges them.
func LoadXRef(data []byte) (*XRefTable, error) {
	off, err := FindStartXRef(data)
	if err != nil {
		return nil, err
	}

	merged := NewXRefTable()
	seen := map[int64]bool{}
	for {
		if seen[off] {
			return nil, fmt.Errorf("%w: /Prev loop at offset %d", ErrSyntax, off)
		}
		seen[off] = true

		sec, err := ParseXRefSection(data, off)
		if err != nil {
			return nil, err
		}
		// Hybrid files: the stream holds the compressed objects that the
		// classic table marks free.
		if stm, ok := sec.Trailer.Int("XRefStm"); ok && !seen[int64(stm)] {
			seen[int64(stm)] = true
			extra, err := ParseXRefSection(data, int64(stm))
			if err != nil {
				return nil, err
			}
			for num, e := range extra.Entries {
				if cur, ok := sec.Entries[num]; !ok || cur.Kind == EntryFree {
					sec.Entries[num] = e
				}
			}
		}

		merged.absorb(sec)

		prev, ok := sec.Trailer.Int("Prev")
		if !ok {
			break
		}
		off = int64(prev)
	}
	return merged, nil
}

// ParseXRefSection reads the section at offset, which is either a classic
// "xref" table with trailer or a cross-reference stream object.
func ParseXRefSection(data []byte, offset int64) (*XRefTable, error) {
	if offset < 0 || offset >= int64(len(data)) {
		return nil, fmt.Errorf("%w: xref offset %d out of range", ErrNoXRef, offset)
	}
	sc := NewScanner(data)
	sc.Seek(int(offset))
	tok, err := sc.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if tok.is("xref") {
		return parseClassic(data, sc)
	}
	return parseXRefStream(data, offset)
}

func parseClassic(data []byte, sc *Scanner) (*XRefTable, error) {
	t := NewXRefTable()
	for {
		tok, err := sc.Next()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		if tok.is("trailer") {
			p := NewParser(data)
			p.Scanner().Seek(sc.Pos())
			obj, err := p.ParseObject()
			if err != nil {
				return nil, fmt.Errorf("trailer: %w", err)
			}
			d, ok := obj.(Dict)
			if !ok {
				return nil, fmt.Errorf("%w: trailer is a %s", ErrSyntax, KindOf(obj))
			}
			t.Trailer = d
			return t, nil
		}
		if tok.Kind != TokInteger {
			return nil, fmt.Errorf("%w at offset %d: expected subsection header", ErrSyntax, tok.Pos)
		}
		firstNum, _ := strconv.Atoi(string(tok.Value))
		cnt, err := sc.Next()
		if err != nil || cnt.Kind != TokInteger {
			return nil, fmt.Errorf("%w at offset %d: expected subsection count", ErrSyntax, tok.Pos)
		}
		count, _ := strconv.Atoi(string(cnt.Value))

		for i := 0; i < count; i++ {
			e, err := classicEntry(sc)
			if err != nil {
				return nil, err
			}
			t.Entries[firstNum+i] = e
		}
	}
}

func classicEntry(sc *Scanner) (XRefEntry, error) {
	var fields [3]Token
	for i := range fields {
		tok, err := sc.Next()
		if err != nil {
			return XRefEntry{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		fields[i] = tok
	}
	if fields[0].Kind != TokInteger || fields[1].Kind != TokInteger {
		return XRefEntry{}, fmt.Errorf("%w at offset %d: malformed xref entry", ErrSyntax, fields[0].Pos)
	}
	off, _ := strconv.ParseInt(string(fields[0].Value), 10, 64)
	gen, _ := strconv.Atoi(string(fields[1].Value))
	switch {
	case fields[2].is("n"):
		return XRefEntry{Kind: EntryInUse, Offset: off, Generation: gen}, nil
	case fields[2].is("f"):
		return XRefEntry{Kind: EntryFree, Generation: gen}, nil
	}
	return XRefEntry{}, fmt.Errorf("%w at offset %d: xref entry flag %q", ErrSyntax, fields[2].Pos, fields[2].Value)
}

func parseXRefStream(data []byte, offset int64) (*XRefTable, error) {
	p := NewParser(data)
	p.Scanner().Seek(int(offset))
	ind, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("xref stream at %d: %w", offset, err)
	}
	s, ok := ind.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("%w: object at %d is a %s, not an xref stream", ErrNoXRef, offset, KindOf(ind.Object))
	}
	if typ, _ := s.Dict.Name("Type"); typ != "XRef" {
		return nil, fmt.Errorf("%w: stream at %d has /Type %q", ErrNoXRef, offset, typ)
	}

	body, err := s.Decode()
	if err != nil {
		return nil, fmt.Errorf("xref stream at %d: %w", offset, err)
	}

	w, err := intsOf(s.Dict.Get("W"))
	if err != nil || len(w) < 3 {
		return nil, fmt.Errorf("%w: xref stream /W invalid", ErrSyntax)
	}
	index, _ := intsOf(s.Dict.Get("Index"))
	if len(index) == 0 {
		size, _ := s.Dict.Int("Size")
		index = []int{0, int(size)}
	}

	t := NewXRefTable()
	t.Trailer = s.Dict
	rowLen := w[0] + w[1] + w[2]
	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		for j := 0; j < index[i+1]; j++ {
			if pos+rowLen > len(body) {
				return t, nil
			}
			typ := int64(1)
			if w[0] > 0 {
				typ = beInt(body[pos : pos+w[0]])
			}
			f2 := beInt(body[pos+w[0] : pos+w[0]+w[1]])
			f3 := beInt(body[pos+w[0]+w[1] : pos+rowLen])
			pos += rowLen

			num := index[i] + j
			switch typ {
			case 0:
				t.Entries[num] = XRefEntry{Kind: EntryFree, Generation: int(f3)}
			case 1:
				t.Entries[num] = XRefEntry{Kind: EntryInUse, Offset: f2, Generation: int(f3)}
			case 2:
				t.Entries[num] = XRefEntry{Kind: EntryCompressed, Stream: int(f2), Index: int(f3)}
			}
		}
	}
	return t, nil
}

func intsOf(o Object) ([]int, error) {
	arr, ok := o.(Array)
	if !ok {
		return nil, fmt.Errorf("%w: expected integer array, got %s", ErrSyntax, KindOf(o))
	}
	out := make([]int, len(arr))
	for i, v := range arr {
		n, ok := v.(Int)
		if !ok {
			return nil, fmt.Errorf("%w: array element %d is a %s", ErrSyntax, i, KindOf(v))
		}
		out[i] = int(n)
	}
	return out, nil
}

func beInt(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

var objHeader = regexp.MustCompile(`(?m)(?:^|[\r\n\s])(\d+)\s+(\d+)\s+obj\b`)

// Reconstruct rebuilds a table by scanning the file for object headers.
// It is the fallback for files whose startxref data is damaged. The trailer
// comes from the last "trailer" dictionary, then the last cross-reference
// stream that names a /Root, then any object typed /Catalog.
func Reconstruct(data []byte) (*XRefTable, error) {
	t := NewXRefTable()
	for _, m := range objHeader.FindAllSubmatchIndex(data, -1) {
		num, _ := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, _ := strconv.Atoi(string(data[m[4]:m[5]]))
		t.Entries[num] = XRefEntry{Kind: EntryInUse, Offset: int64(m[2]), Generation: gen}
	}
	if len(t.Entries) == 0 {
		return nil, fmt.Errorf("%w: no object headers", ErrNoXRef)
	}

	if i := bytes.LastIndex(data, []byte("trailer")); i >= 0 {
		p := NewParser(data)
		p.Scanner().Seek(i + len("trailer"))
		if obj, err := p.ParseObject(); err == nil {
			if d, ok := obj.(Dict); ok && d.Get("Root") != nil {
				t.Trailer = d
				return t, nil
			}
		}
	}

	offsets := make([]int64, 0, len(t.Entries))
	for _, e := range t.Entries {
		offsets = append(offsets, e.Offset)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	var catalog, xrefDict Dict
	for _, off := range offsets {
		p := NewParser(data)
		p.Scanner().Seek(int(off))
		ind, err := p.ParseIndirectObject()
		if err != nil {
			continue
		}
		var d Dict
		switch v := ind.Object.(type) {
		case *Stream:
			d = v.Dict
		case Dict:
			d = v
		}
		switch typ, _ := d.Name("Type"); {
		case typ == "XRef" && d.Get("Root") != nil:
			xrefDict = d
		case typ == "Catalog":
			catalog = Dict{"Root": ind.Ref}
		}
	}
	switch {
	case xrefDict != nil:
		t.Trailer = xrefDict
	case catalog != nil:
		t.Trailer = catalog
	}
	if t.Trailer.Get("Root") == nil {
		return nil, fmt.Errorf("%w: no document catalog", ErrNoXRef)
	}
	return t, nil
}
