package heading

import (
	"errors"
	"fmt"
)

// ErrInvalidHeading is matched by every *InvalidHeadingError.
var ErrInvalidHeading = errors.New("heading: invalid target heading")

// InvalidHeadingError reports a target heading that is not a finite number.
// The controller state is left unchanged when it is returned.
type InvalidHeadingError struct {
	Value float64
}

func (e *InvalidHeadingError) Error() string {
	return fmt.Sprintf("heading: invalid target heading: %v", e.Value)
}

func (e *InvalidHeadingError) Is(target error) bool {
	return target == ErrInvalidHeading
}
