package unitime

import (
	"fmt"
	"testing"

	"github.com/blockberries/unitime/types"
)

func TestSkewError(t *testing.T) {
	err := NewSkewError(types.New(0, 120, 0), types.New(0, 60, 0))

	expected := "adjustment 0d 00:02:00.000000000 exceeds skew limit 0d 00:01:00.000000000"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestIsSkew(t *testing.T) {
	skewErr := NewSkewError(types.New(1, 0, 0), types.New(0, 1, 0))

	// Direct.
	s, ok := IsSkew(skewErr)
	if !ok {
		t.Fatal("expected IsSkew to return true")
	}
	if !s.Delta.Equal(types.New(1, 0, 0)) {
		t.Errorf("unexpected delta: %s", s.Delta)
	}

	// Wrapped.
	wrapped := fmt.Errorf("wrapped: %w", skewErr)
	s2, ok2 := IsSkew(wrapped)
	if !ok2 {
		t.Fatal("expected IsSkew to unwrap wrapped error")
	}
	if !s2.Limit.Equal(types.New(0, 1, 0)) {
		t.Errorf("unexpected limit: %s", s2.Limit)
	}

	// Non-skew error.
	_, ok3 := IsSkew(fmt.Errorf("just a regular error"))
	if ok3 {
		t.Fatal("expected IsSkew to return false for non-skew error")
	}

	// Nil.
	_, ok4 := IsSkew(nil)
	if ok4 {
		t.Fatal("expected IsSkew to return false for nil")
	}
}
