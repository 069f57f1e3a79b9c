// Package extract turns page content into chapter text.
//
// An [Interpreter] walks one page's operation list. Tf selects the active
// font's encoding and scaled cap height, Tj and TJ feed their operands to
// [Collect], and ET ends the current line. When the list is exhausted the
// page text is classified by a chapter.Classifier and either written to
// the current output file or discarded, according to the write gate held
// in the [Context].
//
// State that lives for the whole document (current file, write gate,
// counters) sits in [Context]; state that lives for one page (active
// encoding and height) sits in [PageState] and starts empty on each page.
//
// A text or font operator with a missing or mistyped operand stops the run
// with an [*OperandError].
package extract
