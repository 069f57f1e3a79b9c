package resolver

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdfchapters/core"
)

// ErrCycle is returned when following references leads back to an object
// already on the current path.
var ErrCycle = errors.New("circular reference")

// ErrDepth is returned when resolution nests deeper than the configured
// maximum.
var ErrDepth = errors.New("maximum resolution depth exceeded")

// ObjectReader loads the object an indirect reference points at.
type ObjectReader interface {
	ResolveReference(ref core.IndirectRef) (core.Object, error)
}

// ObjectResolver follows indirect references through an ObjectReader.
type ObjectResolver struct {
	reader   ObjectReader
	maxDepth int
}

// Option configures the resolver
type Option func(*ObjectResolver)

// WithMaxDepth sets the maximum recursion depth (default: 100)
func WithMaxDepth(depth int) Option {
	return func(r *ObjectResolver) {
		r.maxDepth = depth
	}
}

func NewResolver(reader ObjectReader, opts ...Option) *ObjectResolver {
	r := &ObjectResolver{
		reader:   reader,
		maxDepth: 100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns obj with any chain of references at its top level
// followed. Containers are returned as they are.
func (r *ObjectResolver) Resolve(obj core.Object) (core.Object, error) {
	return r.resolve(obj, false, map[int]bool{}, 0)
}

// ResolveDeep also replaces references nested in dictionaries, arrays and
// stream dictionaries. Stream data is not decoded.
func (r *ObjectResolver) ResolveDeep(obj core.Object) (core.Object, error) {
	return r.resolve(obj, true, map[int]bool{}, 0)
}

// ResolveDict resolves obj and requires the result to be a dictionary.
// A null result gives a nil dictionary and no error.
func (r *ObjectResolver) ResolveDict(obj core.Object) (core.Dict, error) {
	out, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	switch v := out.(type) {
	case core.Dict:
		return v, nil
	case core.Null, nil:
		return nil, nil
	}
	return nil, fmt.Errorf("expected dictionary, got %s", core.KindOf(out))
}

// path holds the object numbers on the current branch only, so a shared
// object reached twice from different branches is not a cycle.
func (r *ObjectResolver) resolve(obj core.Object, deep bool, path map[int]bool, depth int) (core.Object, error) {
	if depth >= r.maxDepth {
		return nil, fmt.Errorf("%w (%d)", ErrDepth, r.maxDepth)
	}

	switch v := obj.(type) {
	case core.IndirectRef:
		if path[v.Number] {
			return nil, fmt.Errorf("%w at object %d", ErrCycle, v.Number)
		}
		path[v.Number] = true
		defer delete(path, v.Number)

		target, err := r.reader.ResolveReference(v)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", v, err)
		}
		return r.resolve(target, deep, path, depth+1)

	case core.Dict:
		if !deep {
			return v, nil
		}
		out := make(core.Dict, len(v))
		for key, val := range v {
			res, err := r.resolve(val, deep, path, depth+1)
			if err != nil {
				return nil, fmt.Errorf("key /%s: %w", key, err)
			}
			out[key] = res
		}
		return out, nil

	case core.Array:
		if !deep {
			return v, nil
		}
		out := make(core.Array, len(v))
		for i, elem := range v {
			res, err := r.resolve(elem, deep, path, depth+1)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = res
		}
		return out, nil

	case *core.Stream:
		if !deep {
			return v, nil
		}
		d, err := r.resolve(v.Dict, deep, path, depth+1)
		if err != nil {
			return nil, fmt.Errorf("stream dictionary: %w", err)
		}
		return &core.Stream{Dict: d.(core.Dict), Data: v.Data}, nil
	}
	return obj, nil
}
