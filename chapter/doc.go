// Package chapter decides where each page of a book goes.
//
// A [Classifier] looks at the literal start of a page's text and applies
// the first matching rule of an ordered table:
//
//	Introduction   resume writing to the current file
//	Chapter NN     switch to NN.txt and write
//	Appendix       switch to A.txt and write
//	Part           stop writing
//	Index          stop writing
//
// A page that matches nothing leaves the current file and the write gate
// as they were, so body pages follow the heading that preceded them.
package chapter
