// Package space maps heterogeneous, mixed discrete/continuous parameter
// domains onto flat box-bounded float vectors for continuous optimizers.
//
// Each variable consumes a fixed-width window of the vector. Encode of a
// valid domain value is a direct representation (one-hot index or the raw
// number; QuniformVar snaps to the nearest sequence point, absorbing float
// error between differently computed representations of the same value).
// Decode is where rounding, quantization, and argmax selection happen, so
// Decode(Encode(v)) == v for every declared-domain v.
package space

// Bound is the closed interval one continuous dimension may range over.
type Bound struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Var converts one original-domain value to and from a fixed-width window of
// continuous values. Exactly six implementations exist: ChoiceVar, GridVar,
// RandintVar, QrandintVar, UniformVar and QuniformVar.
type Var interface {
	// Dim returns the number of continuous slots this variable consumes.
	Dim() int

	// Bounds returns the per-slot bounds, length Dim().
	Bounds() []Bound

	// Encode returns the window for a valid domain value, or a DomainError.
	Encode(value any) ([]float64, error)

	// Decode returns the domain value for a window of length Dim(), or a
	// ShapeError.
	Decode(window []float64) (any, error)
}

// ChoiceVar samples one of an ordered list of arbitrary candidate items
// (nominal, unordered). It uses the one-max variation of one-hot encoding:
// decode picks the item at the maximum-valued dimension, ties going to the
// lowest index. Duplicate items are allowed; encode matches the first.
type ChoiceVar struct {
	items  []any
	bounds []Bound
}

// NewChoiceVar creates a categorical variable over the given items.
func NewChoiceVar(items []any) (*ChoiceVar, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Var: "choice", Reason: "items must not be empty"}
	}
	bounds := make([]Bound, len(items))
	for i := range bounds {
		bounds[i] = Bound{Lower: 0.0, Upper: 1.0}
	}
	return &ChoiceVar{items: items, bounds: bounds}, nil
}

func (v *ChoiceVar) Dim() int        { return len(v.items) }
func (v *ChoiceVar) Bounds() []Bound { return v.bounds }

// Encode returns a one-hot window for the first item equal to value.
func (v *ChoiceVar) Encode(value any) ([]float64, error) {
	for i, item := range v.items {
		if sameValue(item, value) {
			window := make([]float64, len(v.items))
			window[i] = 1.0
			return window, nil
		}
	}
	return nil, &DomainError{Var: "choice", Value: value}
}

// Decode returns the item at the maximum-valued dimension.
func (v *ChoiceVar) Decode(window []float64) (any, error) {
	if len(window) != len(v.items) {
		return nil, &ShapeError{Want: len(v.items), Got: len(window)}
	}
	hot := 0
	for i := 1; i < len(window); i++ {
		if window[i] > window[hot] {
			hot = i
		}
	}
	return v.items[hot], nil
}

// GridVar samples one of an ordered list of values (ordinal). Values are used
// in declaration order and are not sorted, so pre-ordered sequences like
// ["good", "better", "best"] keep their meaning. The single encoded dimension
// holds the positional index.
type GridVar struct {
	values []any
	index  *RandintVar
}

// NewGridVar creates an ordinal variable over the given values.
func NewGridVar(values []any) (*GridVar, error) {
	if len(values) == 0 {
		return nil, &ValidationError{Var: "grid", Reason: "values must not be empty"}
	}
	index, err := NewRandintVar(0, len(values)-1)
	if err != nil {
		return nil, err
	}
	return &GridVar{values: values, index: index}, nil
}

func (v *GridVar) Dim() int        { return 1 }
func (v *GridVar) Bounds() []Bound { return v.index.Bounds() }

// Encode returns the positional index of the first value equal to value.
func (v *GridVar) Encode(value any) ([]float64, error) {
	for i, candidate := range v.values {
		if sameValue(candidate, value) {
			return v.index.Encode(i)
		}
	}
	return nil, &DomainError{Var: "grid", Value: value}
}

// Decode rounds to the nearest index, clamps, and returns the value there.
func (v *GridVar) Decode(window []float64) (any, error) {
	decoded, err := v.index.Decode(window)
	if err != nil {
		return nil, err
	}
	return v.values[decoded.(int)], nil
}
