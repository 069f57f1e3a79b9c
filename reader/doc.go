// Package reader opens PDF files and gives access to their objects and
// pages.
//
// # Opening PDF Files
//
//	r, err := reader.Open("book.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
// The whole file is read into memory. Cross-reference data is loaded from
// classic tables, cross-reference streams, or both, following /Prev through
// incremental updates. When it is damaged the table is rebuilt by scanning
// for object headers and [Reader.Repaired] reports true.
//
// # Object Resolution
//
//   - GetObject(objNum) loads an object, including ones packed in object
//     streams. Free and missing objects read as null.
//   - Resolve(obj) follows references at the top level of obj.
//   - ResolveDeep(obj) also expands references inside containers.
//
// Loaded objects are cached for the lifetime of the Reader.
//
// # Pages
//
// Pages are addressed by 0-based index. For text extraction a page offers
// its font table ([Reader.PageFonts]) and its parsed operation list
// ([Reader.PageOperations]).
package reader
