package objective

import (
	"errors"
	"testing"

	"github.com/cwbudde/mixedopt/internal/space"
	"github.com/google/go-cmp/cmp"
)

func testVars(t *testing.T) []space.Var {
	t.Helper()

	choice, err := space.NewChoiceVar([]any{"foo", "bar"})
	if err != nil {
		t.Fatalf("NewChoiceVar failed: %v", err)
	}
	randint, err := space.NewRandintVar(0, 6)
	if err != nil {
		t.Fatalf("NewRandintVar failed: %v", err)
	}
	uniform, err := space.NewUniformVar(-1.0, 1.0)
	if err != nil {
		t.Fatalf("NewUniformVar failed: %v", err)
	}
	return []space.Var{choice, randint, uniform}
}

func TestAdapterNilFunc(t *testing.T) {
	if _, err := New(nil, testVars(t)); err == nil {
		t.Error("Expected error for nil objective function")
	}
}

func TestAdapterBounds(t *testing.T) {
	adapter, err := New(SumSquares, testVars(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if adapter.Dim() != 4 {
		t.Errorf("Expected 4 dimensions, got %d", adapter.Dim())
	}
	if len(adapter.Bounds()) != 4 {
		t.Errorf("Expected 4 bounds, got %d", len(adapter.Bounds()))
	}
	lower, upper := adapter.LowerUpper()
	if len(lower) != 4 || len(upper) != 4 {
		t.Errorf("LowerUpper lengths %d/%d, expected 4/4", len(lower), len(upper))
	}
}

func TestAdapterCallMemoizes(t *testing.T) {
	calls := 0
	counting := func(values []any, extra ...any) (float64, error) {
		calls++
		return float64(len(values)), nil
	}

	adapter, err := New(counting, testVars(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Two vectors that decode to the same tuple
	v1 := []float64{0.9, 0.1, 3.2, 0.5}
	v2 := []float64{0.8, 0.2, 2.9, 0.5}

	c1, err := adapter.Call(v1)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	c2, err := adapter.Call(v2)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if c1 != c2 {
		t.Errorf("Equal tuples should get equal results, got %v and %v", c1, c2)
	}
	if calls != 1 {
		t.Errorf("Objective should run once, ran %d times", calls)
	}

	info := adapter.CacheInfo()
	if info.Hits != 1 || info.Misses != 1 {
		t.Errorf("Expected 1 hit / 1 miss, got %d / %d", info.Hits, info.Misses)
	}
}

func TestAdapterExtraArgsSeparateEntries(t *testing.T) {
	calls := 0
	counting := func(values []any, extra ...any) (float64, error) {
		calls++
		return 0, nil
	}

	adapter, err := New(counting, testVars(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	vector := []float64{1.0, 0.0, 3.0, 0.0}
	if _, err := adapter.Call(vector, "train"); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if _, err := adapter.Call(vector, "validate"); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("Different extra args should not share entries, objective ran %d times", calls)
	}

	info := adapter.CacheInfo()
	if info.Hits != 0 || info.Misses != 2 {
		t.Errorf("Expected 0 hits / 2 misses, got %d / %d", info.Hits, info.Misses)
	}
}

func TestAdapterErrorPropagates(t *testing.T) {
	boom := errors.New("objective exploded")
	failing := func(values []any, extra ...any) (float64, error) {
		return 0, boom
	}

	adapter, err := New(failing, testVars(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	vector := []float64{1.0, 0.0, 3.0, 0.0}
	if _, err := adapter.Call(vector); !errors.Is(err, boom) {
		t.Errorf("Expected the objective's error, got %v", err)
	}

	info := adapter.CacheInfo()
	if info.CurrSize != 0 {
		t.Errorf("Failed result should not be cached, %d entries", info.CurrSize)
	}
}

func TestAdapterCallShapeError(t *testing.T) {
	adapter, err := New(SumSquares, testVars(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = adapter.Call([]float64{1.0})
	var shapeErr *space.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Errorf("Expected ShapeError for wrong-length vector, got %v", err)
	}
}

func TestAdapterEncodeInitialGuess(t *testing.T) {
	adapter, err := New(SumSquares, testVars(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	vector, err := adapter.Encode([]any{"bar", 2, 0.5})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := adapter.Decode(vector)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if diff := cmp.Diff([]any{"bar", 2, 0.5}, decoded); diff != "" {
		t.Errorf("Round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSumSquares(t *testing.T) {
	got, err := SumSquares([]any{"category", 3, 2.0})
	if err != nil {
		t.Fatalf("SumSquares failed: %v", err)
	}
	// 1 (non-numeric) + 9 + 4
	if got != 14.0 {
		t.Errorf("Expected 14, got %v", got)
	}
}

func TestRastriginMixedOrigin(t *testing.T) {
	got, err := RastriginMixed([]any{0, 0.0, "ignored"})
	if err != nil {
		t.Fatalf("RastriginMixed failed: %v", err)
	}
	if got != 0.0 {
		t.Errorf("Rastrigin at the origin should be 0, got %v", got)
	}
}

func TestBuiltinLookup(t *testing.T) {
	if _, err := Builtin("sum-squares"); err != nil {
		t.Errorf("sum-squares should exist: %v", err)
	}
	if _, err := Builtin("nope"); err == nil {
		t.Error("Unknown objective should error")
	}

	names := BuiltinNames()
	if len(names) < 2 {
		t.Errorf("Expected at least 2 builtins, got %v", names)
	}
}
