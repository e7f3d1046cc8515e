package unitime

import (
	"errors"
	"fmt"

	"github.com/blockberries/unitime/types"
)

// SkewError signals that a requested adjustment exceeds the
// timebase's sanity bound and was not applied.
//
// The arithmetic itself cannot fail — any delta normalizes to a
// well-defined value — so this is a policy error: the timebase
// refuses corrections large enough to suggest a broken reference,
// rather than silently stepping its clock by hours.
type SkewError struct {
	Delta types.UniversalTime
	Limit types.UniversalTime
}

func (e *SkewError) Error() string {
	return fmt.Sprintf("adjustment %s exceeds skew limit %s", e.Delta, e.Limit)
}

// NewSkewError creates a new SkewError.
func NewSkewError(delta, limit types.UniversalTime) *SkewError {
	return &SkewError{Delta: delta, Limit: limit}
}

// IsSkew checks whether an error is a SkewError and returns it.
func IsSkew(err error) (*SkewError, bool) {
	var s *SkewError
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}
