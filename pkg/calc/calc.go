package calc

import (
	"context"
	"fmt"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
)

// Evaluator is the in-process arithmetic tool. It implements the calculator
// contract used by the dispatcher.
type Evaluator struct{}

var _ contractx.Calculator = Evaluator{}

func New() Evaluator {
	return Evaluator{}
}

func (Evaluator) Evaluate(ctx context.Context, a, b float64, op contractx.Operator) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	switch op {
	case contractx.OperatorAdd:
		return a + b, nil
	case contractx.OperatorSub:
		return a - b, nil
	case contractx.OperatorMul:
		return a * b, nil
	case contractx.OperatorDiv:
		if b == 0 {
			return 0, fmt.Errorf("%w: %v / %v", contractx.ErrDivisionByZero, a, b)
		}
		return a / b, nil
	default:
		return 0, fmt.Errorf("%w: %q", contractx.ErrUnsupportedOperator, op)
	}
}
