package space

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// VarSpec is a JSON-declarable variable definition, the configuration surface
// used by the CLI and the job server. Numeric fields are floats as JSON
// delivers them; integer variable types require integral values.
type VarSpec struct {
	Type   string  `json:"type"` // choice, grid, randint, qrandint, uniform, quniform
	Items  []any   `json:"items,omitempty"`
	Values []any   `json:"values,omitempty"`
	Lower  float64 `json:"lower,omitempty"`
	Upper  float64 `json:"upper,omitempty"`
	Q      float64 `json:"q,omitempty"`
}

// Build constructs the variable this spec describes.
func (s VarSpec) Build() (Var, error) {
	switch s.Type {
	case "choice":
		return NewChoiceVar(s.Items)
	case "grid":
		return NewGridVar(s.Values)
	case "randint":
		lower, upper, _, err := s.intRange(false)
		if err != nil {
			return nil, err
		}
		return NewRandintVar(lower, upper)
	case "qrandint":
		lower, upper, q, err := s.intRange(true)
		if err != nil {
			return nil, err
		}
		return NewQrandintVar(lower, upper, q)
	case "uniform":
		return NewUniformVar(s.Lower, s.Upper)
	case "quniform":
		return NewQuniformVar(s.Lower, s.Upper, s.Q)
	default:
		return nil, &ValidationError{Var: s.Type, Reason: "unknown variable type"}
	}
}

func (s VarSpec) intRange(withQ bool) (lower, upper, q int, err error) {
	for _, f := range []struct {
		name string
		val  float64
	}{{"lower", s.Lower}, {"upper", s.Upper}} {
		if f.val != math.Trunc(f.val) {
			return 0, 0, 0, &ValidationError{Var: s.Type, Reason: fmt.Sprintf("%s %v must be an integer", f.name, f.val)}
		}
	}
	if withQ {
		if s.Q != math.Trunc(s.Q) {
			return 0, 0, 0, &ValidationError{Var: s.Type, Reason: fmt.Sprintf("q %v must be an integer", s.Q)}
		}
		q = int(s.Q)
	}
	return int(s.Lower), int(s.Upper), q, nil
}

// BuildVars constructs the variables for an ordered list of specs.
func BuildVars(specs []VarSpec) ([]Var, error) {
	if len(specs) == 0 {
		return nil, &ValidationError{Var: "space", Reason: "needs at least one variable"}
	}
	vars := make([]Var, len(specs))
	for i, spec := range specs {
		v, err := spec.Build()
		if err != nil {
			return nil, fmt.Errorf("variable %d: %w", i, err)
		}
		vars[i] = v
	}
	return vars, nil
}

// LoadSpecs reads an ordered list of variable specs from a JSON file.
func LoadSpecs(path string) ([]VarSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read space file: %w", err)
	}
	var specs []VarSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse space file: %w", err)
	}
	return specs, nil
}
