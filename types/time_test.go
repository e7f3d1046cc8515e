package types_test

import (
	"math/rand"
	"reflect"
	"testing"
	"testing/quick"

	"github.com/blockberries/unitime/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// totalNanos collapses a component triple to total nanoseconds since
// day zero. With integral inputs bounded by the generators below the
// result stays under 2^53, so the float64 value is exact and
// comparisons need no tolerance.
func totalNanos(days, seconds int64, nanos float64) float64 {
	return float64(days)*86400e9 + float64(seconds)*1e9 + nanos
}

func utNanos(u types.UniversalTime) float64 {
	return totalNanos(u.Days, u.Seconds, u.NanoSeconds)
}

// tripleValues generates raw component triples in the ranges the
// original fuzz harness used: days in [-100, 100], seconds in
// [-100000, 100000], integral nanoseconds in [-1e9, 1e9].
func tripleValues(args []reflect.Value, r *rand.Rand) {
	args[0] = reflect.ValueOf(r.Int63n(201) - 100)
	args[1] = reflect.ValueOf(r.Int63n(200001) - 100000)
	args[2] = reflect.ValueOf(float64(r.Int63n(2000000001) - 1000000000))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		days, seconds int64
		nanos         float64
		want          types.UniversalTime
	}{
		{
			name: "zero",
			want: types.UniversalTime{},
		},
		{
			name: "already_canonical",
			days: 3, seconds: 26710, nanos: 1547.0,
			want: types.UniversalTime{Days: 3, Seconds: 26710, NanoSeconds: 1547.0},
		},
		{
			name: "nanos_carry_up",
			seconds: 10, nanos: 2.5e9,
			want: types.UniversalTime{Days: 0, Seconds: 12, NanoSeconds: 0.5e9},
		},
		{
			name: "seconds_carry_up",
			seconds: 86400,
			want: types.UniversalTime{Days: 1},
		},
		{
			name: "double_carry",
			seconds: 86399, nanos: 1.5e9,
			want: types.UniversalTime{Days: 1, Seconds: 0, NanoSeconds: 0.5e9},
		},
		{
			name: "negative_nanos_borrow",
			seconds: 5, nanos: -1.0,
			want: types.UniversalTime{Days: 0, Seconds: 4, NanoSeconds: 999999999.0},
		},
		{
			name: "negative_seconds_borrow",
			days: 1, seconds: -1,
			want: types.UniversalTime{Days: 0, Seconds: 86399},
		},
		{
			name: "one_nano_before_day_zero",
			nanos: -1.0,
			want: types.UniversalTime{Days: -1, Seconds: 86399, NanoSeconds: 999999999.0},
		},
		{
			name: "mixed_sign_straddles_second",
			seconds: -1, nanos: 1.0,
			want: types.UniversalTime{Days: -1, Seconds: 86399, NanoSeconds: 1.0},
		},
		{
			name: "large_negative_seconds",
			seconds: -200000,
			want: types.UniversalTime{Days: -3, Seconds: 59200},
		},
		{
			name: "negative_day_whole",
			days: -1,
			want: types.UniversalTime{Days: -1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types.New(tt.days, tt.seconds, tt.nanos)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsCanonical())
		})
	}
}

// Constructing from any raw triple must yield canonical components
// that denote the same instant.
func TestNew_NormalizationRoundTrip(t *testing.T) {
	prop := func(days, seconds int64, nanos float64) bool {
		u := types.New(days, seconds, nanos)
		if !u.IsCanonical() {
			return false
		}
		return utNanos(u) == totalNanos(days, seconds, nanos)
	}
	err := quick.Check(prop, &quick.Config{
		MaxCount: 10000,
		Values:   tripleValues,
	})
	assert.NoError(t, err)
}

func TestAdd_Identity(t *testing.T) {
	prop := func(days, seconds int64, nanos float64) bool {
		u := types.New(days, seconds, nanos)
		return types.UniversalTime{}.Add(u) == u && u.Add(types.UniversalTime{}) == u
	}
	err := quick.Check(prop, &quick.Config{Values: tripleValues})
	assert.NoError(t, err)
}

func TestAdd_Commutative(t *testing.T) {
	add := func(ad, as int64, an float64, bd, bs int64, bn float64) types.UniversalTime {
		return types.New(ad, as, an).Add(types.New(bd, bs, bn))
	}
	addReversed := func(ad, as int64, an float64, bd, bs int64, bn float64) types.UniversalTime {
		return types.New(bd, bs, bn).Add(types.New(ad, as, an))
	}
	err := quick.CheckEqual(add, addReversed, &quick.Config{
		Values: func(args []reflect.Value, r *rand.Rand) {
			tripleValues(args[:3], r)
			tripleValues(args[3:], r)
		},
	})
	assert.NoError(t, err)
}

// (a + b) - b must recover a exactly, including when b pushes the
// intermediate sum across day zero.
func TestSub_InvertsAdd(t *testing.T) {
	prop := func(ad, as int64, an float64, bd, bs int64, bn float64) bool {
		a := types.New(ad, as, an)
		b := types.New(bd, bs, bn)
		return a.Add(b).Sub(b) == a
	}
	err := quick.Check(prop, &quick.Config{
		MaxCount: 10000,
		Values: func(args []reflect.Value, r *rand.Rand) {
			tripleValues(args[:3], r)
			tripleValues(args[3:], r)
		},
	})
	assert.NoError(t, err)
}

func TestSub(t *testing.T) {
	tests := []struct {
		name string
		a, b types.UniversalTime
		want types.UniversalTime
	}{
		{
			name: "borrows_full_day",
			a:    types.New(0, 0, 0),
			b:    types.New(0, 0, 1.0),
			want: types.UniversalTime{Days: -1, Seconds: 86399, NanoSeconds: 999999999.0},
		},
		{
			// Two event stamps one second apart with a sub-second
			// remainder that has to borrow from the seconds column.
			name: "adjacent_event_stamps",
			a:    types.New(0, 62310, 1.5477e6),
			b:    types.New(0, 62309, 9.93522e8),
			want: types.UniversalTime{Days: 0, Seconds: 0, NanoSeconds: 8.0257e6},
		},
		{
			name: "negative_days_result",
			a:    types.New(2, 100, 0),
			b:    types.New(5, 200, 0),
			want: types.UniversalTime{Days: -4, Seconds: 86300},
		},
		{
			name: "same_instant",
			a:    types.New(7, 40000, 12.0),
			b:    types.New(7, 40000, 12.0),
			want: types.UniversalTime{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Sub(tt.b)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsCanonical())
		})
	}
}

// Exactly one of a < b, a == b, a > b holds, and it agrees with the
// real-valued instants the triples denote.
func TestCompare_TotalOrder(t *testing.T) {
	prop := func(ad, as int64, an float64, bd, bs int64, bn float64) bool {
		a := types.New(ad, as, an)
		b := types.New(bd, bs, bn)

		holds := 0
		if a.Before(b) {
			holds++
		}
		if a.Equal(b) {
			holds++
		}
		if a.After(b) {
			holds++
		}
		if holds != 1 {
			return false
		}

		av, bv := utNanos(a), utNanos(b)
		switch {
		case av < bv:
			return a.Before(b)
		case av > bv:
			return a.After(b)
		default:
			return a.Equal(b)
		}
	}
	err := quick.Check(prop, &quick.Config{
		MaxCount: 10000,
		Values: func(args []reflect.Value, r *rand.Rand) {
			tripleValues(args[:3], r)
			tripleValues(args[3:], r)
		},
	})
	assert.NoError(t, err)
}

func TestCompare_Tiers(t *testing.T) {
	base := types.New(10, 500, 250.0)
	tests := []struct {
		name string
		v    types.UniversalTime
		want int
	}{
		{"later_day", types.New(11, 0, 0), -1},
		{"earlier_day", types.New(9, 86399, 999999999.0), 1},
		{"later_second_same_day", types.New(10, 501, 0), -1},
		{"earlier_second_same_day", types.New(10, 499, 999999999.0), 1},
		{"later_nano", types.New(10, 500, 251.0), -1},
		{"earlier_nano", types.New(10, 500, 249.0), 1},
		{"equal", types.New(10, 500, 250.0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Compare(tt.v))
		})
	}
}

// Different raw triples denoting the same instant must construct
// equal (and ==-identical) values.
func TestEqual_AcrossRawForms(t *testing.T) {
	forms := []types.UniversalTime{
		types.New(1, 0, 0),
		types.New(0, 86400, 0),
		types.New(0, 0, 86400e9),
		types.New(2, -86400, 0),
		types.New(0, 86401, -1e9),
		types.New(-1, 172800, 0),
	}
	for i, f := range forms[1:] {
		require.Equal(t, forms[0], f, "form %d", i+1)
		assert.True(t, forms[0].Equal(f))
	}
}

func TestNormalized_Idempotent(t *testing.T) {
	prop := func(days, seconds int64, nanos float64) bool {
		u := types.New(days, seconds, nanos)
		return u.Normalized() == u
	}
	err := quick.Check(prop, &quick.Config{Values: tripleValues})
	assert.NoError(t, err)
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, types.UniversalTime{}.IsCanonical())
	assert.True(t, types.UniversalTime{Days: -5, Seconds: 86399, NanoSeconds: 999999999}.IsCanonical())
	assert.False(t, types.UniversalTime{Seconds: 86400}.IsCanonical())
	assert.False(t, types.UniversalTime{NanoSeconds: -1}.IsCanonical())
	assert.False(t, types.UniversalTime{NanoSeconds: 1e9}.IsCanonical())
}

func TestIsZero(t *testing.T) {
	assert.True(t, types.New(0, 0, 0).IsZero())
	assert.False(t, types.New(0, 0, 1).IsZero())
	assert.True(t, types.New(1, -86400, 0).IsZero())
}

func TestString(t *testing.T) {
	assert.Equal(t, "0d 00:00:00.000000000", types.New(0, 0, 0).String())
	assert.Equal(t, "3d 07:25:10.000001547", types.New(3, 26710, 1547.0).String())
	assert.Equal(t, "-1d 23:59:59.999999999", types.New(0, 0, -1.0).String())
}
