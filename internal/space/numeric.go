package space

import (
	"fmt"
	"math"
)

// RandintVar samples an integer uniformly between lower and upper, both
// inclusive.
type RandintVar struct {
	lower, upper int
	bounds       []Bound
}

// NewRandintVar creates an integer variable over [lower, upper].
func NewRandintVar(lower, upper int) (*RandintVar, error) {
	if lower > upper {
		return nil, &ValidationError{Var: "randint", Reason: fmt.Sprintf("lower %d exceeds upper %d", lower, upper)}
	}
	bounds := []Bound{widened(float64(lower)-0.5, float64(upper)+0.5)}
	return &RandintVar{lower: lower, upper: upper, bounds: bounds}, nil
}

func (v *RandintVar) Dim() int        { return 1 }
func (v *RandintVar) Bounds() []Bound { return v.bounds }

// Encode returns the raw integer; a valid value is already a direct encoding.
func (v *RandintVar) Encode(value any) ([]float64, error) {
	n, ok := value.(int)
	if !ok || n < v.lower || n > v.upper {
		return nil, &DomainError{Var: "randint", Value: value}
	}
	return []float64{float64(n)}, nil
}

// Decode rounds to the nearest integer (ties away from zero) and clamps.
func (v *RandintVar) Decode(window []float64) (any, error) {
	if len(window) != 1 {
		return nil, &ShapeError{Want: 1, Got: len(window)}
	}
	return clampInt(roundHalfAway(window[0]), v.lower, v.upper), nil
}

// QrandintVar samples an integer from the sequence lower, lower+q, ... not
// exceeding upper. The sequence is anchored at lower, not at multiples of q.
type QrandintVar struct {
	lower, upper, q int
	kmax            int
	bounds          []Bound
}

// NewQrandintVar creates a quantized integer variable over [lower, upper]
// with step q.
func NewQrandintVar(lower, upper, q int) (*QrandintVar, error) {
	if lower > upper {
		return nil, &ValidationError{Var: "qrandint", Reason: fmt.Sprintf("lower %d exceeds upper %d", lower, upper)}
	}
	if q <= 0 {
		return nil, &ValidationError{Var: "qrandint", Reason: fmt.Sprintf("step %d must be positive", q)}
	}
	kmax := (upper - lower) / q
	last := lower + kmax*q
	half := float64(q) / 2
	bounds := []Bound{widened(float64(lower)-half, float64(last)+half)}
	return &QrandintVar{lower: lower, upper: upper, q: q, kmax: kmax, bounds: bounds}, nil
}

func (v *QrandintVar) Dim() int        { return 1 }
func (v *QrandintVar) Bounds() []Bound { return v.bounds }

// Encode returns the raw integer after checking it lies on the sequence.
func (v *QrandintVar) Encode(value any) ([]float64, error) {
	n, ok := value.(int)
	if !ok || n < v.lower || n > v.upper || (n-v.lower)%v.q != 0 {
		return nil, &DomainError{Var: "qrandint", Value: value}
	}
	return []float64{float64(n)}, nil
}

// Decode rounds to the nearest sequence step and clamps.
func (v *QrandintVar) Decode(window []float64) (any, error) {
	if len(window) != 1 {
		return nil, &ShapeError{Want: 1, Got: len(window)}
	}
	k := roundHalfAway((window[0] - float64(v.lower)) / float64(v.q))
	return v.lower + clampInt(k, 0, v.kmax)*v.q, nil
}

// UniformVar samples a float uniformly between lower and upper. The bounds
// are exact and decode is the identity: no rounding occurs.
type UniformVar struct {
	lower, upper float64
	bounds       []Bound
}

// NewUniformVar creates a continuous variable over [lower, upper].
func NewUniformVar(lower, upper float64) (*UniformVar, error) {
	if !(lower <= upper) {
		return nil, &ValidationError{Var: "uniform", Reason: fmt.Sprintf("lower %v exceeds upper %v", lower, upper)}
	}
	bounds := []Bound{{Lower: lower, Upper: upper}}
	return &UniformVar{lower: lower, upper: upper, bounds: bounds}, nil
}

func (v *UniformVar) Dim() int        { return 1 }
func (v *UniformVar) Bounds() []Bound { return v.bounds }

func (v *UniformVar) Encode(value any) ([]float64, error) {
	f, ok := value.(float64)
	if !ok || f < v.lower || f > v.upper {
		return nil, &DomainError{Var: "uniform", Value: value}
	}
	return []float64{f}, nil
}

func (v *UniformVar) Decode(window []float64) (any, error) {
	if len(window) != 1 {
		return nil, &ShapeError{Want: 1, Got: len(window)}
	}
	return window[0], nil
}

// QuniformVar samples a float from the sequence lower, lower+q, ... not
// exceeding upper. Sequence values are reconstructed as lower + k*q, so
// decode output is bit-identical to values generated the same way.
type QuniformVar struct {
	lower, upper, q float64
	kmax            int
	bounds          []Bound
}

// NewQuniformVar creates a quantized float variable over [lower, upper] with
// step q.
func NewQuniformVar(lower, upper, q float64) (*QuniformVar, error) {
	if !(lower <= upper) {
		return nil, &ValidationError{Var: "quniform", Reason: fmt.Sprintf("lower %v exceeds upper %v", lower, upper)}
	}
	if !(q > 0) {
		return nil, &ValidationError{Var: "quniform", Reason: fmt.Sprintf("step %v must be positive", q)}
	}
	// Count steps, correcting for float error in the division either way.
	kmax := int(math.Floor((upper - lower) / q))
	for lower+float64(kmax+1)*q <= upper {
		kmax++
	}
	for kmax > 0 && lower+float64(kmax)*q > upper {
		kmax--
	}
	last := lower + float64(kmax)*q
	bounds := []Bound{widened(lower-q/2, last+q/2)}
	return &QuniformVar{lower: lower, upper: upper, q: q, kmax: kmax, bounds: bounds}, nil
}

func (v *QuniformVar) Dim() int        { return 1 }
func (v *QuniformVar) Bounds() []Bound { return v.bounds }

// Encode checks the value lies within rounding error of a sequence point and
// returns that point. Snapping here keeps decode(encode(v)) bit-exact however
// the caller computed v.
func (v *QuniformVar) Encode(value any) ([]float64, error) {
	f, ok := value.(float64)
	if !ok {
		return nil, &DomainError{Var: "quniform", Value: value}
	}
	k := roundHalfAway((f - v.lower) / v.q)
	if k < 0 || k > v.kmax {
		return nil, &DomainError{Var: "quniform", Value: value}
	}
	snapped := v.lower + float64(k)*v.q
	if !closeEnough(f, snapped) {
		return nil, &DomainError{Var: "quniform", Value: value}
	}
	return []float64{snapped}, nil
}

// Decode rounds to the nearest sequence step and clamps.
func (v *QuniformVar) Decode(window []float64) (any, error) {
	if len(window) != 1 {
		return nil, &ShapeError{Want: 1, Got: len(window)}
	}
	k := clampInt(roundHalfAway((window[0]-v.lower)/v.q), 0, v.kmax)
	return v.lower + float64(k)*v.q, nil
}
