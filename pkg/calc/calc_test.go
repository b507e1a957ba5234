package calc

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	e := New()
	ctx := context.Background()

	cases := []struct {
		a, b float64
		op   contractx.Operator
		want float64
	}{
		{15, 27, contractx.OperatorAdd, 42},
		{10, 4, contractx.OperatorSub, 6},
		{10, 5, contractx.OperatorMul, 50},
		{100, 4, contractx.OperatorDiv, 25},
		{-3, 5, contractx.OperatorAdd, 2},
	}

	for _, tc := range cases {
		got, err := e.Evaluate(ctx, tc.a, tc.b, tc.op)
		if err != nil {
			t.Fatalf("Evaluate(%v, %v, %q) error = %v", tc.a, tc.b, tc.op, err)
		}
		if got != tc.want {
			t.Fatalf("Evaluate(%v, %v, %q) = %v, want %v", tc.a, tc.b, tc.op, got, tc.want)
		}
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	t.Parallel()

	_, err := New().Evaluate(context.Background(), 4, 0, contractx.OperatorDiv)
	if !errors.Is(err, contractx.ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestEvaluateUnsupportedOperator(t *testing.T) {
	t.Parallel()

	_, err := New().Evaluate(context.Background(), 1, 2, contractx.Operator("pow"))
	if !errors.Is(err, contractx.ErrUnsupportedOperator) {
		t.Fatalf("expected ErrUnsupportedOperator, got %v", err)
	}
}

func TestEvaluateHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Evaluate(ctx, 1, 2, contractx.OperatorAdd)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
