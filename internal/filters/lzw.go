package filters

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"
)

// LZWDecode expands LZW data and undoes any predictor named in p.
// As with Flate, a stream cut short keeps whatever was decoded.
func LZWDecode(data []byte, p Params) ([]byte, error) {
	zr := lzw.NewReader(bytes.NewReader(data), !p.LateChange)
	defer zr.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, zr); err != nil {
		if out.Len() == 0 || !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("lzw: %w", err)
		}
	}
	return unpredict("lzw", out.Bytes(), p)
}
