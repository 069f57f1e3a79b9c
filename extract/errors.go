package extract

import (
	"errors"
	"fmt"
)

// ErrOperandType is matched by every *OperandError.
var ErrOperandType = errors.New("operand type error")

// OperandError reports an operator whose required operand is absent or of
// the wrong kind.
type OperandError struct {
	Page     int // 1-based
	Index    int // position of the operation in the page
	Operator string
	Operand  int // position of the operand
	Want     string
	Got      string
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("page %d, operation %d (%s): operand %d is %s, want %s",
		e.Page, e.Index, e.Operator, e.Operand, e.Got, e.Want)
}

func (e *OperandError) Unwrap() error { return ErrOperandType }
