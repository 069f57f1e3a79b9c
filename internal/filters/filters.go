package filters

import (
	"errors"
)

// ErrUnsupported is returned for a filter name with no registered decoder.
var ErrUnsupported = errors.New("unsupported filter")

// Params holds the /DecodeParms entries that influence decoding.
// Zero fields take the PDF defaults when passed through [Params.normalize].
type Params struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int
	// LateChange is set when /EarlyChange is 0, so LZW code widths grow
	// one code later than the default.
	LateChange bool
}

func (p Params) normalize() Params {
	if p.Predictor == 0 {
		p.Predictor = 1
	}
	if p.Colors == 0 {
		p.Colors = 1
	}
	if p.BitsPerComponent == 0 {
		p.BitsPerComponent = 8
	}
	if p.Columns == 0 {
		p.Columns = 1
	}
	return p
}

// Decoder decodes one filter stage.
type Decoder func(data []byte, p Params) ([]byte, error)

var registry = map[string]Decoder{
	"FlateDecode":     FlateDecode,
	"Fl":              FlateDecode,
	"LZWDecode":       LZWDecode,
	"LZW":             LZWDecode,
	"ASCIIHexDecode":  ignoreParams(ASCIIHexDecode),
	"AHx":             ignoreParams(ASCIIHexDecode),
	"ASCII85Decode":   ignoreParams(ASCII85Decode),
	"A85":             ignoreParams(ASCII85Decode),
	"RunLengthDecode": ignoreParams(RunLengthDecode),
	"RL":              ignoreParams(RunLengthDecode),
}

// Lookup returns the decoder registered for a filter name.
func Lookup(name string) (Decoder, bool) {
	d, ok := registry[name]
	return d, ok
}

func ignoreParams(fn func([]byte) ([]byte, error)) Decoder {
	return func(data []byte, _ Params) ([]byte, error) {
		return fn(data)
	}
}

// RunLengthDecode expands PackBits-style run-length data.
// A length byte n < 128 copies n+1 literal bytes, n > 128 repeats the next
// byte 257-n times, and 128 ends the data.
func RunLengthDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)
	for i := 0; i < len(data); {
		n := int(data[i])
		i++
		switch {
		case n == 128:
			return out, nil
		case n < 128:
			end := i + n + 1
			if end > len(data) {
				return nil, errors.New("run length literal overruns data")
			}
			out = append(out, data[i:end]...)
			i = end
		default:
			if i >= len(data) {
				return nil, errors.New("run length repeat missing byte")
			}
			for k := 0; k < 257-n; k++ {
				out = append(out, data[i])
			}
			i++
		}
	}
	return out, nil
}
