// Package font describes the fonts a page refers to and turns the raw bytes
// of a shown string into text.
//
// # Descriptors
//
// A [Descriptor] is built from a font dictionary and exposes the two things
// text extraction needs: the encoding identifier (the /Encoding name, the
// /BaseEncoding of an encoding dictionary, or StandardEncoding when the
// font names none) and the /FontDescriptor entry carrying the font's
// metrics, left unresolved so callers decide how far to follow it.
//
// A page's /Font resource dictionary becomes a [Table] keyed by resource
// name:
//
//	table := font.NewTable(fonts, resolver)
//	d, ok := table.Lookup("F1")
//
// # Decoding
//
// [Decode] maps raw string bytes to text for an encoding identifier:
//
//   - WinAnsiEncoding and MacRomanEncoding use the x/text code pages
//   - StandardEncoding and PDFDocEncoding use built-in tables
//   - Identity-H, Identity-V and the Uni*-UCS2/UTF16 CMaps are UTF-16BE
//   - anything else, including no encoding at all, is read as UTF-8 with
//     invalid sequences replaced
//
// A leading UTF-16BE byte order mark overrides single-byte encodings.
// Output is NFC normalized.
package font
