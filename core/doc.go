// Package core provides the PDF object model and the low-level syntax
// readers that build it.
//
// # Object Model
//
// Every value read from a file or a content stream satisfies [Object]:
//
//   - [Null], [Bool], [Int], [Real]
//   - [String] holds the raw bytes of a literal or hexadecimal string. No
//     character decoding is applied here; that depends on the font in use.
//   - [Name] holds a name without its leading slash.
//   - [Array] and [Dict]
//   - [*Stream] pairs a dictionary with its undecoded data.
//   - [IndirectRef] points at an object by number and generation.
//
// [Object.Kind] reports the variant, which callers use to build readable
// type errors.
//
// # Syntax
//
// [Scanner] tokenizes a byte slice and is shared by the file parser and the
// content stream parser. [Parser] turns tokens into objects, including
// "n g obj ... endobj" definitions and stream bodies.
//
// # Cross-Reference Data
//
// [LoadXRef] follows the startxref pointer and the /Prev chain, reading both
// classic tables and PDF 1.5 cross-reference streams, and merges them so the
// newest revision of each object wins. Objects stored compressed inside an
// object stream are read with [ObjectStream].
package core
