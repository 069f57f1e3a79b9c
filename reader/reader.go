package reader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/tsawler/pdfchapters/contentstream"
	"github.com/tsawler/pdfchapters/core"
	"github.com/tsawler/pdfchapters/font"
	"github.com/tsawler/pdfchapters/pages"
	"github.com/tsawler/pdfchapters/resolver"
)

// ErrNotPDF is returned when the data carries no %PDF- header.
var ErrNotPDF = errors.New("not a PDF file")

// PDFVersion represents a PDF version
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Reader gives access to the objects and pages of a PDF held in memory.
type Reader struct {
	data       []byte
	xrefTable  *core.XRefTable
	trailer    core.Dict
	version    PDFVersion
	repaired   bool
	objCache   map[int]core.Object
	objStreams map[int]*core.ObjectStream
	loading    map[int]bool
	resolver   *resolver.ObjectResolver
	pageTree   *pages.PageTree
}

var (
	_ pages.ObjectResolver   = (*Reader)(nil)
	_ font.Resolver          = (*Reader)(nil)
	_ core.ReferenceResolver = (*Reader)(nil)
	_ resolver.ObjectReader  = (*Reader)(nil)
)

// Open reads a PDF file into memory and returns a Reader for it.
func Open(filename string) (*Reader, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return NewReader(data)
}

// NewReader parses the header and cross-reference data of a PDF. When the
// cross-reference data is unusable the object table is rebuilt by scanning
// the file.
func NewReader(data []byte) (*Reader, error) {
	r := &Reader{
		data:       data,
		objCache:   make(map[int]core.Object),
		objStreams: make(map[int]*core.ObjectStream),
		loading:    make(map[int]bool),
	}
	r.resolver = resolver.NewResolver(r)

	version, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	r.version = version

	table, err := core.LoadXRef(data)
	if err == nil {
		r.setXRef(table)
		if _, cerr := r.Catalog(); cerr == nil {
			return r, nil
		}
	}

	table, rerr := core.Reconstruct(data)
	if rerr != nil {
		if err == nil {
			err = rerr
		}
		return nil, fmt.Errorf("failed to load xref: %w", err)
	}
	r.setXRef(table)
	r.repaired = true
	if _, err := r.Catalog(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) setXRef(t *core.XRefTable) {
	r.xrefTable = t
	r.trailer = t.Trailer
	r.objCache = make(map[int]core.Object)
	r.objStreams = make(map[int]*core.ObjectStream)
	r.pageTree = nil
}

var versionPattern = regexp.MustCompile(`%PDF-(\d+)\.(\d+)`)

// parseHeader finds %PDF-x.y within the first kilobyte; some producers put
// junk before it.
func parseHeader(data []byte) (PDFVersion, error) {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	m := versionPattern.FindSubmatch(head)
	if m == nil {
		return PDFVersion{}, ErrNotPDF
	}
	major, _ := strconv.Atoi(string(m[1]))
	minor, _ := strconv.Atoi(string(m[2]))
	return PDFVersion{Major: major, Minor: minor}, nil
}

// Close releases the file contents.
func (r *Reader) Close() error {
	r.data = nil
	r.objCache = nil
	r.objStreams = nil
	return nil
}

// Version returns the PDF version
func (r *Reader) Version() PDFVersion {
	return r.version
}

// Trailer returns the trailer dictionary
func (r *Reader) Trailer() core.Dict {
	return r.trailer
}

// Repaired reports whether the object table had to be rebuilt by scanning.
func (r *Reader) Repaired() bool {
	return r.repaired
}

// XRefTable returns the cross-reference table
func (r *Reader) XRefTable() *core.XRefTable {
	return r.xrefTable
}

// GetObject loads an object by its number. Objects that are free or absent
// from the table read as null.
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	if obj, ok := r.objCache[objNum]; ok {
		return obj, nil
	}
	if r.loading[objNum] {
		return nil, fmt.Errorf("object %d refers to itself while loading", objNum)
	}
	r.loading[objNum] = true
	defer delete(r.loading, objNum)

	entry, ok := r.xrefTable.Get(objNum)
	var obj core.Object
	var err error
	switch {
	case !ok || entry.Kind == core.EntryFree:
		obj = core.Null{}
	case entry.Kind == core.EntryCompressed:
		obj, err = r.compressedObject(objNum, entry)
	default:
		obj, err = r.objectAt(objNum, entry.Offset)
	}
	if err != nil {
		return nil, err
	}
	r.objCache[objNum] = obj
	return obj, nil
}

func (r *Reader) objectAt(objNum int, offset int64) (core.Object, error) {
	if offset < 0 || offset >= int64(len(r.data)) {
		return nil, fmt.Errorf("object %d offset %d out of range", objNum, offset)
	}
	p := core.NewParser(r.data, core.WithReferenceResolver(r))
	p.Scanner().Seek(int(offset))
	ind, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %d: %w", objNum, err)
	}
	if ind.Ref.Number != objNum {
		return nil, fmt.Errorf("object number mismatch: expected %d, got %d", objNum, ind.Ref.Number)
	}
	return ind.Object, nil
}

func (r *Reader) compressedObject(objNum int, entry core.XRefEntry) (core.Object, error) {
	stm, ok := r.objStreams[entry.Stream]
	if !ok {
		container, err := r.GetObject(entry.Stream)
		if err != nil {
			return nil, fmt.Errorf("object stream %d: %w", entry.Stream, err)
		}
		s, isStream := container.(*core.Stream)
		if !isStream {
			return nil, fmt.Errorf("object stream %d is a %s", entry.Stream, core.KindOf(container))
		}
		stm, err = core.NewObjectStream(s)
		if err != nil {
			return nil, fmt.Errorf("object stream %d: %w", entry.Stream, err)
		}
		r.objStreams[entry.Stream] = stm
	}
	obj, err := stm.Lookup(objNum, entry.Index)
	if err != nil {
		return nil, fmt.Errorf("object %d in stream %d: %w", objNum, entry.Stream, err)
	}
	return obj, nil
}

// ResolveReference resolves an indirect reference
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// Resolve follows references at the top level of obj.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	return r.resolver.Resolve(obj)
}

// ResolveDeep also replaces references nested inside containers.
func (r *Reader) ResolveDeep(obj core.Object) (core.Object, error) {
	return r.resolver.ResolveDeep(obj)
}

// Catalog returns the document catalog (root object)
func (r *Reader) Catalog() (*pages.Catalog, error) {
	root := r.trailer.Get("Root")
	if root == nil {
		return nil, fmt.Errorf("trailer missing /Root entry")
	}
	d, err := r.resolver.ResolveDict(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("catalog is null")
	}
	return pages.NewCatalog(d, r), nil
}

// PageCount returns the number of pages in the PDF
func (r *Reader) PageCount() (int, error) {
	if err := r.ensurePageTree(); err != nil {
		return 0, err
	}
	return r.pageTree.Count()
}

// GetPage returns the page at the given index (0-based)
func (r *Reader) GetPage(index int) (*pages.Page, error) {
	if err := r.ensurePageTree(); err != nil {
		return nil, err
	}
	return r.pageTree.GetPage(index)
}

func (r *Reader) ensurePageTree() error {
	if r.pageTree != nil {
		return nil
	}
	catalog, err := r.Catalog()
	if err != nil {
		return fmt.Errorf("failed to get catalog: %w", err)
	}
	root, err := catalog.Pages()
	if err != nil {
		return err
	}
	r.pageTree = pages.NewPageTree(root, r)
	return nil
}

// PageFonts returns the font table of a page, keyed by resource name.
// Font entries that cannot be read are left out.
func (r *Reader) PageFonts(page *pages.Page) (font.Table, error) {
	fonts, err := page.Fonts()
	if err != nil {
		return nil, fmt.Errorf("page %d fonts: %w", page.Index+1, err)
	}
	return font.NewTable(fonts, r), nil
}

// PageContent returns the decoded, concatenated content streams of a page.
func (r *Reader) PageContent(page *pages.Page) ([]byte, error) {
	data, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("page %d content: %w", page.Index+1, err)
	}
	return data, nil
}

// PageOperations parses the content of a page into its operation list.
func (r *Reader) PageOperations(page *pages.Page) ([]contentstream.Operation, error) {
	data, err := r.PageContent(page)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	ops, err := contentstream.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("page %d operations: %w", page.Index+1, err)
	}
	return ops, nil
}
