package core

import (
	"errors"
)

var (
	ErrDepthExceeded    = errors.New("fractal depth exceeds the configured maximum")
	ErrInvalidScale     = errors.New("fractal scale must be finite and greater than zero")
	ErrInvalidPosition  = errors.New("fractal position must be finite")
	ErrUnknownGenerator = errors.New("unknown fractal generator")
	ErrInstanceBudget   = errors.New("fractal pass would exceed the instance budget")
	ErrUnknown          = errors.New("unknown")
)
