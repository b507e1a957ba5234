package contract

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrDivisionByZero      = errors.New("division by zero")
	ErrUnsupportedOperator = errors.New("unsupported operator")
)
