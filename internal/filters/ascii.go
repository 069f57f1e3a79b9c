package filters

import (
	"bytes"
	"encoding/ascii85"
	"encoding/hex"
	"fmt"
)

// ASCIIHexDecode decodes hex digit pairs up to the '>' end marker.
// Whitespace is skipped and an odd final digit is padded with zero.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	if i := bytes.IndexByte(data, '>'); i >= 0 {
		data = data[:i]
	}
	digits := stripSpace(data)
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, hex.DecodedLen(len(digits)))
	if _, err := hex.Decode(out, digits); err != nil {
		return nil, fmt.Errorf("asciihex: %w", err)
	}
	return out, nil
}

// ASCII85Decode decodes base-85 data, accepting an optional "<~" prefix and
// stopping at the "~>" end marker.
func ASCII85Decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(bytes.TrimSpace(data), []byte("<~"))
	if i := bytes.Index(data, []byte("~>")); i >= 0 {
		data = data[:i]
	}
	src := stripSpace(data)
	out := make([]byte, 4*len(src)+4)
	n, _, err := ascii85.Decode(out, src, true)
	if err != nil {
		return nil, fmt.Errorf("ascii85: %w", err)
	}
	return out[:n], nil
}

func stripSpace(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, c := range data {
		switch c {
		case ' ', '\t', '\r', '\n', '\f', 0:
			continue
		}
		out = append(out, c)
	}
	return out
}
