package space

import "fmt"

// ValidationError reports an invalid variable construction (empty candidate
// list, inverted range, non-positive step). It is returned eagerly by the
// constructors, never deferred to encode/decode time.
type ValidationError struct {
	Var    string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Var + " variable: " + e.Reason
}

// ShapeError reports a vector or tuple whose length does not match the
// expected dimensionality. It signals caller misuse and is fatal per call;
// inputs are never truncated or padded.
type ShapeError struct {
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape mismatch: want %d values, got %d", e.Want, e.Got)
}

// DomainError reports an attempt to encode a value that is not in the
// variable's declared domain.
type DomainError struct {
	Var   string
	Value any
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("value %v is not in the %s variable's domain", e.Value, e.Var)
}
