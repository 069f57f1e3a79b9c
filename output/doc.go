// Package output writes chapter files into a per-document folder.
//
// A [Sink] is created once per run. It recreates the folder from scratch,
// so running twice over the same document gives identical results, and
// always holds exactly one open file, starting with 00.txt.
package output
