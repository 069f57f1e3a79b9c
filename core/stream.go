package core

import (
	"fmt"

	"github.com/tsawler/pdfchapters/internal/filters"
)

// Decode applies the stream's /Filter chain and returns the plain bytes.
// A stream without filters is returned as stored.
func (s *Stream) Decode() ([]byte, error) {
	names, params, err := s.filterChain()
	if err != nil {
		return nil, err
	}
	data := s.Data
	for i, name := range names {
		dec, ok := filters.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("filter %s: %w", name, filters.ErrUnsupported)
		}
		data, err = dec(data, params[i])
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s): %w", i, name, err)
		}
	}
	return data, nil
}

func (s *Stream) filterChain() ([]string, []filters.Params, error) {
	var names []string
	switch f := s.Dict.Get("Filter").(type) {
	case nil, Null:
		return nil, nil, nil
	case Name:
		names = []string{string(f)}
	case Array:
		for i, v := range f {
			n, ok := v.(Name)
			if !ok {
				return nil, nil, fmt.Errorf("%w: /Filter element %d is a %s", ErrSyntax, i, KindOf(v))
			}
			names = append(names, string(n))
		}
	default:
		return nil, nil, fmt.Errorf("%w: /Filter is a %s", ErrSyntax, KindOf(f))
	}

	params := make([]filters.Params, len(names))
	switch dp := s.Dict.Get("DecodeParms").(type) {
	case Dict:
		params[0] = paramsOf(dp)
	case Array:
		for i := 0; i < len(dp) && i < len(params); i++ {
			if d, ok := dp[i].(Dict); ok {
				params[i] = paramsOf(d)
			}
		}
	}
	return names, params, nil
}

func paramsOf(d Dict) filters.Params {
	get := func(key string) int {
		n, _ := d.Int(key)
		return int(n)
	}
	early, ok := d.Int("EarlyChange")
	return filters.Params{
		Predictor:        get("Predictor"),
		Colors:           get("Colors"),
		BitsPerComponent: get("BitsPerComponent"),
		Columns:          get("Columns"),
		LateChange:       ok && early == 0,
	}
}
