// Package objective wraps a user objective over a mixed discrete/continuous
// parameter space so a continuous box-bounded optimizer can drive it.
package objective

import (
	"errors"

	"github.com/cwbudde/mixedopt/internal/space"
)

// Func is the user-supplied objective over decoded parameter values. Errors
// it returns propagate through the adapter unchanged, uncached and unretried.
// The adapter holds a reference only; the caller retains ownership.
type Func func(values []any, extra ...any) (float64, error)

// Adapter is the callable surface handed to an optimizer. Each call decodes
// the input vector, consults the result cache, and forwards misses to the
// underlying objective.
//
// Construct one adapter per optimization run. The adapter is immutable after
// construction except for its cache, which accumulates entries over the
// adapter's lifetime and holds identity-based keys that do not survive
// serialization; never share an adapter across processes, and drive each
// instance from a single goroutine.
type Adapter struct {
	fn     Func
	space  *space.Space
	cache  *ResultCache
	bounds []space.Bound
}

// New creates an adapter for fn over the given ordered variables.
func New(fn Func, vars []space.Var) (*Adapter, error) {
	if fn == nil {
		return nil, errors.New("objective function must not be nil")
	}
	sp, err := space.NewSpace(vars)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		fn:     fn,
		space:  sp,
		cache:  NewResultCache(),
		bounds: sp.Bounds(),
	}, nil
}

// Dim returns the total encoded dimensionality.
func (a *Adapter) Dim() int { return a.space.Dim() }

// Bounds returns the per-dimension bounds to hand to the optimizer's
// box-constraint parameter, length Dim().
func (a *Adapter) Bounds() []space.Bound { return a.bounds }

// LowerUpper returns the bounds as parallel lower/upper slices.
func (a *Adapter) LowerUpper() ([]float64, []float64) { return a.space.LowerUpper() }

// Encode maps a known-good original-domain tuple to a vector, e.g. to build
// an initial guess for the optimizer.
func (a *Adapter) Encode(values []any) ([]float64, error) { return a.space.Encode(values) }

// Decode maps an optimizer-produced vector back to the original domain, e.g.
// to interpret the returned solution.
func (a *Adapter) Decode(vector []float64) ([]any, error) { return a.space.Decode(vector) }

// Call evaluates the objective at the decoded vector, memoizing by the
// decoded tuple plus extra arguments. A wrong-length vector is a caller error
// and returns a ShapeError. The underlying objective is invoked at most once
// per distinct key; its errors propagate unchanged and are not cached.
func (a *Adapter) Call(vector []float64, extra ...any) (float64, error) {
	values, err := a.space.Decode(vector)
	if err != nil {
		return 0, err
	}
	return a.cache.GetOrCompute(Key(values, extra), func() (float64, error) {
		return a.fn(values, extra...)
	})
}

// CacheInfo returns a snapshot of the cache's hit/miss/size counters.
func (a *Adapter) CacheInfo() CacheInfo { return a.cache.Info() }
