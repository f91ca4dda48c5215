package space

// Space composes an ordered list of variables into a single flat parameter
// vector, tracking per-variable window offsets.
type Space struct {
	vars    []Var
	offsets []int
	dim     int
	bounds  []Bound
}

// NewSpace creates a space over the given variables, in declaration order.
func NewSpace(vars []Var) (*Space, error) {
	if len(vars) == 0 {
		return nil, &ValidationError{Var: "space", Reason: "needs at least one variable"}
	}
	s := &Space{
		vars:    vars,
		offsets: make([]int, len(vars)),
	}
	for i, v := range vars {
		s.offsets[i] = s.dim
		s.dim += v.Dim()
		s.bounds = append(s.bounds, v.Bounds()...)
	}
	return s, nil
}

// Len returns the number of variables (the decoded tuple length).
func (s *Space) Len() int { return len(s.vars) }

// Dim returns the total encoded dimensionality.
func (s *Space) Dim() int { return s.dim }

// Bounds returns the concatenated per-dimension bounds, length Dim().
func (s *Space) Bounds() []Bound { return s.bounds }

// LowerUpper returns the bounds as parallel lower/upper slices, the shape
// box-constrained optimizers take.
func (s *Space) LowerUpper() ([]float64, []float64) {
	lower := make([]float64, s.dim)
	upper := make([]float64, s.dim)
	for i, b := range s.bounds {
		lower[i] = b.Lower
		upper[i] = b.Upper
	}
	return lower, upper
}

// Encode concatenates each variable's encoding of the corresponding tuple
// element. The tuple length must equal Len().
func (s *Space) Encode(values []any) ([]float64, error) {
	if len(values) != len(s.vars) {
		return nil, &ShapeError{Want: len(s.vars), Got: len(values)}
	}
	vector := make([]float64, 0, s.dim)
	for i, v := range s.vars {
		window, err := v.Encode(values[i])
		if err != nil {
			return nil, err
		}
		vector = append(vector, window...)
	}
	return vector, nil
}

// Decode slices the vector into consecutive per-variable windows and decodes
// each. The vector length must equal Dim().
func (s *Space) Decode(vector []float64) ([]any, error) {
	if len(vector) != s.dim {
		return nil, &ShapeError{Want: s.dim, Got: len(vector)}
	}
	values := make([]any, len(s.vars))
	for i, v := range s.vars {
		window := vector[s.offsets[i] : s.offsets[i]+v.Dim()]
		decoded, err := v.Decode(window)
		if err != nil {
			return nil, err
		}
		values[i] = decoded
	}
	return values, nil
}
