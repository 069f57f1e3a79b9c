package filters

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// FlateDecode inflates zlib data and undoes any predictor named in p.
//
// Producers frequently truncate the final zlib block or omit the checksum;
// when that happens the bytes inflated so far are returned without error.
func FlateDecode(data []byte, p Params) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	defer zr.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, zr); err != nil {
		if out.Len() == 0 || !(errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, zlib.ErrChecksum)) {
			return nil, fmt.Errorf("flate: %w", err)
		}
	}

	return unpredict("flate", out.Bytes(), p)
}

// unpredict reverses the /Predictor stage shared by Flate and LZW.
func unpredict(filter string, data []byte, p Params) ([]byte, error) {
	p = p.normalize()
	switch {
	case p.Predictor == 1:
		return data, nil
	case p.Predictor == 2:
		return unpredictTIFF(data, p)
	case p.Predictor >= 10 && p.Predictor <= 15:
		return unpredictPNG(data, p)
	default:
		return nil, fmt.Errorf("%s: predictor %d: %w", filter, p.Predictor, ErrUnsupported)
	}
}

func unpredictTIFF(data []byte, p Params) ([]byte, error) {
	if p.BitsPerComponent != 8 {
		return nil, fmt.Errorf("tiff predictor: %d bits per component: %w", p.BitsPerComponent, ErrUnsupported)
	}
	stride := p.Columns * p.Colors
	out := make([]byte, len(data))
	copy(out, data)
	for row := 0; row+stride <= len(out); row += stride {
		for i := p.Colors; i < stride; i++ {
			out[row+i] += out[row+i-p.Colors]
		}
	}
	return out, nil
}

// unpredictPNG reverses per-row PNG filtering. Each row carries its own
// filter type byte, so the /Predictor value only selects PNG mode.
func unpredictPNG(data []byte, p Params) ([]byte, error) {
	bpp := (p.Colors*p.BitsPerComponent + 7) / 8
	stride := (p.Columns*p.Colors*p.BitsPerComponent + 7) / 8
	if len(data)%(stride+1) != 0 {
		return nil, fmt.Errorf("png predictor: %d bytes is not a multiple of row size %d", len(data), stride+1)
	}

	out := make([]byte, 0, len(data)/(stride+1)*stride)
	prev := make([]byte, stride)
	cur := make([]byte, stride)
	for off := 0; off < len(data); off += stride + 1 {
		kind := data[off]
		copy(cur, data[off+1:off+1+stride])
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]
			switch kind {
			case 0:
			case 1:
				cur[i] += left
			case 2:
				cur[i] += up
			case 3:
				cur[i] += byte((int(left) + int(up)) / 2)
			case 4:
				cur[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("png predictor: unknown row filter %d", kind)
			}
		}
		out = append(out, cur...)
		prev, cur = cur, prev
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
