// Package contentstream splits a decoded page content stream into its
// sequence of operations.
//
// A content stream is postfix: operands come first and the operator that
// consumes them follows.
//
//	ops, err := contentstream.Parse(data)
//	for _, op := range ops {
//	    fmt.Println(op) // e.g. "/F1 12 Tf"
//	}
//
// Operands are core objects (numbers, strings with their raw bytes, names,
// arrays, dictionaries). Inline images (BI ... ID <data> EI) are reduced to
// a single "BI" operation carrying the image dictionary; the binary image
// data is skipped.
package contentstream
