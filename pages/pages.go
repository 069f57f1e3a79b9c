package pages

import (
	"fmt"

	"github.com/tsawler/pdfchapters/core"
)

// ObjectResolver follows indirect references.
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Catalog represents the PDF document catalog (root of document structure)
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{dict: dict, resolver: resolver}
}

// Pages returns the root node of the page tree.
func (c *Catalog) Pages() (core.Dict, error) {
	ref := c.dict.Get("Pages")
	if ref == nil {
		return nil, fmt.Errorf("catalog missing /Pages entry")
	}
	obj, err := c.resolver.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Pages: %w", err)
	}
	d, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid /Pages type: %s", core.KindOf(obj))
	}
	return d, nil
}

// PageTree flattens the page tree into document order.
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	pages    []*Page
}

func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{root: root, resolver: resolver}
}

// Count returns the number of leaf pages actually reachable, which may
// differ from a damaged /Count entry.
func (t *PageTree) Count() (int, error) {
	if err := t.load(); err != nil {
		return 0, err
	}
	return len(t.pages), nil
}

// GetPage returns the page at the given index (0-based)
func (t *PageTree) GetPage(index int) (*Page, error) {
	if err := t.load(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(t.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(t.pages))
	}
	return t.pages[index], nil
}

// Pages returns all pages in document order.
func (t *PageTree) Pages() ([]*Page, error) {
	if err := t.load(); err != nil {
		return nil, err
	}
	return t.pages, nil
}

// frame is one pending node of the traversal with the Resources entry in
// force at its position in the tree.
type frame struct {
	node      core.Dict
	resources core.Object
}

func (t *PageTree) load() error {
	if t.pages != nil {
		return nil
	}
	pages := make([]*Page, 0)
	seen := map[int]bool{}

	stack := []frame{{node: t.root, resources: t.root.Get("Resources")}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !isPagesNode(f.node) {
			pages = append(pages, &Page{
				Index:     len(pages),
				dict:      f.node,
				resources: f.resources,
				resolver:  t.resolver,
			})
			continue
		}

		kidsObj, err := t.resolver.Resolve(f.node.Get("Kids"))
		if err != nil {
			return fmt.Errorf("failed to resolve /Kids: %w", err)
		}
		kids, ok := kidsObj.(core.Array)
		if !ok {
			return fmt.Errorf("invalid /Kids type: %s", core.KindOf(kidsObj))
		}

		// Pushed in reverse so the first kid is visited first.
		for i := len(kids) - 1; i >= 0; i-- {
			if ref, ok := kids[i].(core.IndirectRef); ok {
				if seen[ref.Number] {
					return fmt.Errorf("page tree revisits object %d", ref.Number)
				}
				seen[ref.Number] = true
			}
			kidObj, err := t.resolver.Resolve(kids[i])
			if err != nil {
				return fmt.Errorf("failed to resolve kid %d: %w", i, err)
			}
			kid, ok := kidObj.(core.Dict)
			if !ok {
				return fmt.Errorf("invalid kid type: %s", core.KindOf(kidObj))
			}
			res := f.resources
			if own := kid.Get("Resources"); own != nil {
				res = own
			}
			stack = append(stack, frame{node: kid, resources: res})
		}
	}
	t.pages = pages
	return nil
}

// isPagesNode treats a node as intermediate when it says so or, lacking a
// /Type, when it has /Kids.
func isPagesNode(d core.Dict) bool {
	if typ, ok := d.Name("Type"); ok {
		return typ == "Pages"
	}
	return d.Get("Kids") != nil
}

// Page is one leaf of the page tree.
type Page struct {
	Index     int
	dict      core.Dict
	resources core.Object
	resolver  ObjectResolver
}

// Dict returns the page dictionary.
func (p *Page) Dict() core.Dict { return p.dict }

// Resources returns the page's own or inherited resource dictionary. A page
// with none has an empty dictionary.
func (p *Page) Resources() (core.Dict, error) {
	if p.resources == nil {
		return core.Dict{}, nil
	}
	obj, err := p.resolver.Resolve(p.resources)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Resources: %w", err)
	}
	switch v := obj.(type) {
	case core.Dict:
		return v, nil
	case core.Null:
		return core.Dict{}, nil
	}
	return nil, fmt.Errorf("invalid Resources type: %s", core.KindOf(obj))
}

// Fonts returns the /Font subdictionary of the resources, resolved one
// level. It is empty when the page declares no fonts.
func (p *Page) Fonts() (core.Dict, error) {
	res, err := p.Resources()
	if err != nil {
		return nil, err
	}
	obj, err := p.resolver.Resolve(res.Get("Font"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Font: %w", err)
	}
	if d, ok := obj.(core.Dict); ok {
		return d, nil
	}
	return core.Dict{}, nil
}

// Contents returns the page content streams in order. Contents is
// optional; a page without it has none. Null entries are skipped.
func (p *Page) Contents() ([]*core.Stream, error) {
	obj, err := p.resolver.Resolve(p.dict.Get("Contents"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Contents: %w", err)
	}

	switch v := obj.(type) {
	case nil, core.Null:
		return nil, nil
	case *core.Stream:
		return []*core.Stream{v}, nil
	case core.Array:
		streams := make([]*core.Stream, 0, len(v))
		for i, elem := range v {
			res, err := p.resolver.Resolve(elem)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve contents[%d]: %w", i, err)
			}
			switch s := res.(type) {
			case *core.Stream:
				streams = append(streams, s)
			case core.Null:
			default:
				return nil, fmt.Errorf("invalid contents[%d] type: %s", i, core.KindOf(res))
			}
		}
		return streams, nil
	}
	return nil, fmt.Errorf("invalid Contents type: %s", core.KindOf(obj))
}

// Content decodes every content stream of the page and joins them. Streams
// are separated by a newline so a token never spans two of them.
func (p *Page) Content() ([]byte, error) {
	streams, err := p.Contents()
	if err != nil {
		return nil, err
	}
	var out []byte
	for i, s := range streams {
		data, err := s.Decode()
		if err != nil {
			return nil, fmt.Errorf("content stream %d: %w", i, err)
		}
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, data...)
	}
	return out, nil
}
