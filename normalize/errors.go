package normalize

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when too few clean observations remain to
// model the series.
var ErrInsufficientData = errors.New("insufficient data")

// InsufficientDataError reports how many observations were available.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: have %d observations, need at least %d", e.Have, e.Need)
}

// Is lets errors.Is match ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}
