package contract

import "context"

// Calculator is the arithmetic evaluator collaborator. Evaluate fails with
// ErrDivisionByZero when op is OperatorDiv and b is zero.
type Calculator interface {
	Evaluate(ctx context.Context, a, b float64, op Operator) (float64, error)
}

// ProductSearcher is the vector-search product collaborator.
type ProductSearcher interface {
	Search(ctx context.Context, query string) (ProductAnswer, error)
}

// OutletLookup is the natural-language outlet record collaborator. An empty
// result slice is a valid, non-error outcome.
type OutletLookup interface {
	Lookup(ctx context.Context, query string) ([]OutletRecord, error)
}
