// Package pages provides PDF page tree traversal and page access.
//
// PDF documents organize pages in a tree of /Pages nodes with /Page leaves.
// [PageTree] flattens it into document order:
//
//	tree := pages.NewPageTree(pagesDict, resolver)
//	count, _ := tree.Count()
//	page, _ := tree.GetPage(0)  // 0-indexed
//
// The traversal keeps an explicit stack, so deep trees do not grow the Go
// call stack, and it refuses trees that revisit a node.
//
// # Resources
//
// /Resources is inheritable: a page without its own dictionary uses the
// nearest ancestor's. [Page.Fonts] returns the /Font subdictionary that
// text extraction needs.
//
// # Contents
//
// A page's /Contents is a single stream or an array of streams.
// [Page.Content] decodes and concatenates them.
package pages
