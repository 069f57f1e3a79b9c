// Package pdftest assembles small, well-formed PDF files for tests.
//
// Objects are numbered in the order they are added. Both classic
// cross-reference tables and compressed cross-reference streams (with
// selected objects packed into an object stream) can be produced, so the
// reader is exercised against either layout with the same content.
package pdftest

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// Builder accumulates object bodies.
type Builder struct {
	bodies []string
}

func New() *Builder { return &Builder{} }

// Reserve allocates an object number to be filled later with Set.
func (b *Builder) Reserve() int {
	b.bodies = append(b.bodies, "null")
	return len(b.bodies)
}

// Set replaces the body of object num.
func (b *Builder) Set(num int, body string) {
	b.bodies[num-1] = body
}

// Add appends an object and returns its number.
func (b *Builder) Add(body string) int {
	b.bodies = append(b.bodies, body)
	return len(b.bodies)
}

// AddStream appends an uncompressed stream. dict holds extra entries
// without the enclosing << >>.
func (b *Builder) AddStream(dict string, data []byte) int {
	return b.Add(streamBody(dict, data))
}

// AddFlateStream appends a FlateDecode stream.
func (b *Builder) AddFlateStream(dict string, data []byte) int {
	return b.Add(streamBody(strings.TrimSpace(dict+" /Filter /FlateDecode"), deflate(data)))
}

func streamBody(dict string, data []byte) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

func header() *bytes.Buffer {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	return buf
}

// Classic renders the file with a classic xref table and trailer.
func (b *Builder) Classic(root int) []byte {
	buf := header()
	offsets := make([]int, len(b.bodies)+1)
	for i, body := range b.bodies {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n0000000000 65535 f \n", len(b.bodies)+1)
	for _, off := range offsets[1:] {
		fmt.Fprintf(buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.bodies)+1, root, xref)
	return buf.Bytes()
}

// XRefStream renders the file with a compressed cross-reference stream.
// The objects listed in packed are stored inside one object stream.
func (b *Builder) XRefStream(root int, packed ...int) []byte {
	inStream := map[int]int{}
	sort.Ints(packed)
	for i, num := range packed {
		inStream[num] = i
	}

	buf := header()
	offsets := make([]int, len(b.bodies)+1)
	for i, body := range b.bodies {
		num := i + 1
		if _, ok := inStream[num]; ok {
			continue
		}
		offsets[num] = buf.Len()
		fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	objStm := 0
	if len(packed) > 0 {
		var head, body bytes.Buffer
		for _, num := range packed {
			fmt.Fprintf(&head, "%d %d ", num, body.Len())
			body.WriteString(b.bodies[num-1])
			body.WriteByte('\n')
		}
		data := append(head.Bytes(), body.Bytes()...)
		objStm = len(b.bodies) + 1
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", objStm,
			streamBody(fmt.Sprintf("/Type /ObjStm /N %d /First %d /Filter /FlateDecode", len(packed), head.Len()), deflate(data)))
	}

	xrefNum := len(offsets)
	xrefOff := buf.Len()
	var rows bytes.Buffer
	row := func(typ byte, f2 int, f3 int) {
		rows.Write([]byte{typ, byte(f2 >> 24), byte(f2 >> 16), byte(f2 >> 8), byte(f2), byte(f3 >> 8), byte(f3)})
	}
	row(0, 0, 65535)
	for num := 1; num < xrefNum; num++ {
		if idx, ok := inStream[num]; ok {
			row(2, objStm, idx)
		} else {
			row(1, offsets[num], 0)
		}
	}
	row(1, xrefOff, 0)

	fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", xrefNum, streamBody(
		fmt.Sprintf("/Type /XRef /Size %d /W [1 4 2] /Root %d 0 R /Filter /FlateDecode", xrefNum+1, root),
		deflate(rows.Bytes())))
	fmt.Fprintf(buf, "startxref\n%d\n%%%%EOF\n", xrefOff)
	return buf.Bytes()
}

// Book describes a document whose pages all use one WinAnsi font named F1
// with a /CapHeight of 700.
type Book struct {
	*Builder
	Root  int
	Font  int
	Pages []int
}

// NewBook builds a catalog, page tree, font, and one page per content
// string. Content streams are Flate-compressed.
func NewBook(contents ...string) *Book {
	b := New()
	bk := &Book{Builder: b}
	bk.Root = b.Reserve()
	tree := b.Reserve()
	desc := b.Add("<< /Type /FontDescriptor /FontName /Helvetica /CapHeight 700 >>")
	bk.Font = b.Add(fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FontDescriptor %d 0 R >>", desc))

	kids := make([]string, 0, len(contents))
	for _, c := range contents {
		stream := b.AddFlateStream("", []byte(c))
		page := b.Add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Contents %d 0 R >>", tree, stream))
		bk.Pages = append(bk.Pages, page)
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}
	b.Set(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /Resources << /Font << /F1 %d 0 R >> >> >>",
		strings.Join(kids, " "), len(kids), bk.Font))
	b.Set(bk.Root, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", tree))
	return bk
}

// Bytes renders the book with a classic xref table.
func (bk *Book) Bytes() []byte { return bk.Classic(bk.Root) }

// Compressed renders the book with an xref stream, packing the page
// objects and the font into an object stream.
func (bk *Book) Compressed() []byte {
	packed := append([]int{bk.Font}, bk.Pages...)
	return bk.XRefStream(bk.Root, packed...)
}

// Text wraps lines in a minimal text object, one Tj per line.
func Text(lines ...string) string {
	var sb strings.Builder
	sb.WriteString("BT /F1 12 Tf\n")
	for _, l := range lines {
		fmt.Fprintf(&sb, "(%s) Tj\n", l)
	}
	sb.WriteString("ET\n")
	return sb.String()
}
