package font

import (
	"github.com/tsawler/pdfchapters/core"
)

// DefaultEncoding applies to fonts whose dictionary names no encoding.
const DefaultEncoding = "StandardEncoding"

// Resolver follows one indirect reference. Non-reference objects are
// returned as they are.
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Descriptor is the text-extraction view of one font dictionary.
type Descriptor struct {
	BaseFont string
	Subtype  string
	encoding string
	metrics  core.Object
}

// NewDescriptor reads a font dictionary. r may be nil, in which case
// indirect /Encoding and /DescendantFonts entries are not followed.
func NewDescriptor(d core.Dict, r Resolver) *Descriptor {
	desc := &Descriptor{encoding: DefaultEncoding}
	if n, ok := d.Name("BaseFont"); ok {
		desc.BaseFont = string(n)
	}
	if n, ok := d.Name("Subtype"); ok {
		desc.Subtype = string(n)
	}

	switch enc := resolve(r, d.Get("Encoding")).(type) {
	case core.Name:
		desc.encoding = string(enc)
	case core.Dict:
		if base, ok := enc.Name("BaseEncoding"); ok {
			desc.encoding = string(base)
		}
	}

	desc.metrics = d.Get("FontDescriptor")
	if desc.metrics == nil && desc.Subtype == "Type0" {
		// Composite fonts keep their descriptor on the descendant CIDFont.
		if kids, ok := resolve(r, d.Get("DescendantFonts")).(core.Array); ok && len(kids) > 0 {
			if kid, ok := resolve(r, kids[0]).(core.Dict); ok {
				desc.metrics = kid.Get("FontDescriptor")
			}
		}
	}
	return desc
}

// Encoding returns the encoding identifier.
func (d *Descriptor) Encoding() string { return d.encoding }

// MetricsSource returns the /FontDescriptor entry: an inline dictionary, an
// indirect reference to one, or nil.
func (d *Descriptor) MetricsSource() core.Object { return d.metrics }

func resolve(r Resolver, obj core.Object) core.Object {
	if r == nil || obj == nil {
		return obj
	}
	out, err := r.Resolve(obj)
	if err != nil {
		return nil
	}
	return out
}

// Table maps font resource names (no leading slash) to descriptors.
type Table map[string]*Descriptor

func (t Table) Lookup(name string) (*Descriptor, bool) {
	d, ok := t[name]
	return d, ok
}

// NewTable builds a table from a /Font resource dictionary. Entries that do
// not resolve to a dictionary are left out, so a later Tf naming them is
// treated as a missing font.
func NewTable(fonts core.Dict, r Resolver) Table {
	t := make(Table, len(fonts))
	for name, v := range fonts {
		d, ok := resolve(r, v).(core.Dict)
		if !ok {
			continue
		}
		t[name] = NewDescriptor(d, r)
	}
	return t
}
