// Package filters implements the stream filters needed to read page content
// and cross-reference data out of a PDF file.
//
// Each filter is a [Decoder] registered under its full PDF name and its
// inline abbreviation, so callers resolve a filter chain with [Lookup]:
//
//	dec, ok := filters.Lookup("FlateDecode")
//	if !ok {
//	    return fmt.Errorf("filter not supported")
//	}
//	out, err := dec(data, filters.Params{Predictor: 12, Columns: 5})
//
// # Supported Filters
//
//   - FlateDecode (Fl): zlib with optional TIFF (2) or PNG (10-15) predictors.
//     Cross-reference streams almost always use PNG Up prediction.
//   - ASCIIHexDecode (AHx)
//   - ASCII85Decode (A85)
//   - RunLengthDecode (RL)
//
// Image codecs (DCT, JPX, JBIG2, CCITT) are not provided; page content and
// cross-reference streams never use them.
package filters
