package objective

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Builtin objectives evaluable by name. The CLI and the job server cannot
// accept arbitrary callables, so jobs reference one of these instead.
var builtins = map[string]Func{
	"sum-squares":     SumSquares,
	"rastrigin-mixed": RastriginMixed,
}

// Builtin returns the named objective function.
func Builtin(name string) (Func, error) {
	fn, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown objective %q (known: %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	return fn, nil
}

// BuiltinNames returns the sorted names of all builtin objectives.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SumSquares sums the squares of all numeric elements and charges a unit
// penalty per non-numeric element. Minimal where every numeric variable is at
// its level nearest zero; categorical choices are cost-neutral relative to
// each other. Extra arguments are ignored.
func SumSquares(values []any, _ ...any) (float64, error) {
	var sum float64
	for _, v := range values {
		if x, ok := numeric(v); ok {
			sum += x * x
		} else {
			sum += 1.0
		}
	}
	return sum, nil
}

// RastriginMixed applies the Rastrigin function to the numeric elements, a
// standard multimodal benchmark with its global minimum at the origin.
// Non-numeric elements contribute nothing. Extra arguments are ignored.
func RastriginMixed(values []any, _ ...any) (float64, error) {
	var sum float64
	for _, v := range values {
		if x, ok := numeric(v); ok {
			sum += x*x - 10*math.Cos(2*math.Pi*x) + 10
		}
	}
	return sum, nil
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
