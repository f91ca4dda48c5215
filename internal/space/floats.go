package space

import (
	"math"
	"reflect"
)

// nextUp returns the smallest float64 greater than v.
func nextUp(v float64) float64 {
	return math.Nextafter(v, math.Inf(1))
}

// nextDown returns the largest float64 smaller than v.
func nextDown(v float64) float64 {
	return math.Nextafter(v, math.Inf(-1))
}

// widened returns the half-step interval around [lower, upper] grown outward
// by one ULP at each end. The half step gives every discrete level, including
// the boundary ones, a roughly equal-width band of encoded values; decode
// clamps, so the extra ULP never produces an out-of-range level.
func widened(lower, upper float64) Bound {
	return Bound{Lower: nextDown(lower), Upper: nextUp(upper)}
}

// roundHalfAway rounds half-way ties away from zero (math.Round). This is the
// single tie-breaking rule used by every quantizing decode.
func roundHalfAway(v float64) int {
	return int(math.Round(v))
}

// closeEnough reports near-equality within a small relative tolerance. Two
// computations of the same sequence point can land an ULP or two apart
// (constant folding is exact, runtime arithmetic rounds per operation), so
// membership checks cannot demand bit equality.
func closeEnough(a, b float64) bool {
	if a == b {
		return true
	}
	const relTol = 1e-9
	return math.Abs(a-b) <= relTol*math.Max(math.Abs(a), math.Abs(b))
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// sameValue reports whether a declared candidate matches a caller-supplied
// value. Comparable values match by value; uncomparable ones (slices, maps,
// functions) match by reference identity, so candidates only need equality,
// never ordering.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	pa, okA := identityOf(a)
	pb, okB := identityOf(b)
	return okA && okB && pa == pb
}

// identityOf returns a stable reference identity for uncomparable values.
// Uncomparable values without a reference (e.g. structs embedding slices)
// have no identity and never match.
func identityOf(v any) (uintptr, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.UnsafePointer:
		return rv.Pointer(), true
	default:
		return 0, false
	}
}
