package extract

import "github.com/tsawler/pdfchapters/core"

// ToFloat converts an integer or real operand to float64. Other kinds
// report false.
func ToFloat(o core.Object) (float64, bool) {
	switch v := o.(type) {
	case core.Int:
		return float64(v), true
	case core.Real:
		return float64(v), true
	}
	return 0, false
}
