package extract

import (
	"strings"

	"github.com/tsawler/pdfchapters/core"
)

// DecodeFunc turns the raw bytes of a string operand into text. A nil
// encoding means no font has set one.
type DecodeFunc func(encoding *string, raw []byte) string

// wordGap is the displacement, in thousandths of text space, below which
// a TJ adjustment is read as a space between words.
const wordGap = -100

type collectFrame struct {
	items []core.Object
	next  int
	array bool
}

// Collect appends the text carried by operands to buf. Strings are
// decoded; each array contributes its elements followed by one space; an
// integer displacement below -100 contributes one space. Reals and other
// kinds add nothing. Nested arrays are walked with an explicit stack.
func Collect(buf *strings.Builder, decode DecodeFunc, encoding *string, operands []core.Object) {
	stack := []collectFrame{{items: operands}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.items) {
			if top.array {
				buf.WriteByte(' ')
			}
			stack = stack[:len(stack)-1]
			continue
		}
		item := top.items[top.next]
		top.next++

		switch v := item.(type) {
		case core.String:
			buf.WriteString(decode(encoding, v))
		case core.Array:
			stack = append(stack, collectFrame{items: v, array: true})
		case core.Int:
			if v < wordGap {
				buf.WriteByte(' ')
			}
		}
	}
}
