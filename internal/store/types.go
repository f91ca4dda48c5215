package store

import (
	"fmt"
	"reflect"
	"time"

	"github.com/cwbudde/mixedopt/internal/space"
)

// RunConfig holds the definition of an optimization run (checkpoint copy).
// Keeping it here avoids import cycles with the server package.
type RunConfig struct {
	Space              []space.VarSpec `json:"space"`
	Objective          string          `json:"objective"`
	Iters              int             `json:"iters"`
	PopSize            int             `json:"popSize"`
	Seed               int64           `json:"seed"`
	Restarts           int             `json:"restarts,omitempty"`
	CheckpointInterval int             `json:"checkpointInterval,omitempty"` // seconds, 0 = disabled
}

// CacheStats mirrors the adapter's result-cache counters at checkpoint time.
type CacheStats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	CurrSize int    `json:"currSize"`
}

// Checkpoint represents a saved optimization state that can be resumed later.
//
// Only the best encoded vector, its decoded tuple, and the run counters are
// saved. Optimizer population state is not: different optimizers have
// different internals, and serializing them would tie the checkpoint format
// to one implementation. A resume therefore restarts with a fresh population
// seeded from the best vector; the best cost never gets worse, but the run
// is not a perfect continuation. The result cache is also not persisted (its
// keys can hold reference identities that are meaningless in another
// process), so a resumed run rebuilds its cache from scratch.
type Checkpoint struct {
	// JobID is the unique identifier for this optimization job
	JobID string `json:"jobId"`

	// BestVector is the encoded parameter vector that achieved BestCost
	BestVector []float64 `json:"bestVector"`

	// BestValues is the decoded tuple for BestVector, for human inspection.
	// Note JSON round-trips lose Go types (ints come back as float64), so
	// resume logic uses BestVector, never BestValues.
	BestValues []any `json:"bestValues,omitempty"`

	// BestCost is the objective value achieved by BestVector
	BestCost float64 `json:"bestCost"`

	// InitialCost is the starting cost, for improvement tracking
	InitialCost float64 `json:"initialCost"`

	// Evaluations is the number of adapter calls completed (hits + misses)
	Evaluations int `json:"evaluations"`

	// Cache holds the adapter's cache counters at checkpoint time
	Cache CacheStats `json:"cache"`

	// Timestamp records when this checkpoint was created
	Timestamp time.Time `json:"timestamp"`

	// Config holds the run definition, needed for validation during resume
	Config RunConfig `json:"config"`
}

// NewCheckpoint creates a checkpoint from run state.
func NewCheckpoint(jobID string, bestVector []float64, bestValues []any, bestCost, initialCost float64, evaluations int, cache CacheStats, config RunConfig) *Checkpoint {
	return &Checkpoint{
		JobID:       jobID,
		BestVector:  bestVector,
		BestValues:  bestValues,
		BestCost:    bestCost,
		InitialCost: initialCost,
		Evaluations: evaluations,
		Cache:       cache,
		Timestamp:   time.Now(),
		Config:      config,
	}
}

// CheckpointInfo contains metadata about a checkpoint without the parameter
// data, for efficient listing.
type CheckpointInfo struct {
	JobID       string    `json:"jobId"`
	BestCost    float64   `json:"bestCost"`
	Evaluations int       `json:"evaluations"`
	Timestamp   time.Time `json:"timestamp"`
	Objective   string    `json:"objective"`
	Variables   int       `json:"variables"`
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:       c.JobID,
		BestCost:    c.BestCost,
		Evaluations: c.Evaluations,
		Timestamp:   c.Timestamp,
		Objective:   c.Config.Objective,
		Variables:   len(c.Config.Space),
	}
}

// Validate checks if the checkpoint has valid, internally consistent data.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(c.BestVector) == 0 {
		return &ValidationError{Field: "BestVector", Reason: "cannot be empty"}
	}
	if c.Evaluations < 0 {
		return &ValidationError{Field: "Evaluations", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.Objective == "" {
		return &ValidationError{Field: "Config.Objective", Reason: "cannot be empty"}
	}
	if c.Config.Iters <= 0 {
		return &ValidationError{Field: "Config.Iters", Reason: "must be positive"}
	}
	if c.Config.PopSize <= 0 {
		return &ValidationError{Field: "Config.PopSize", Reason: "must be positive"}
	}
	if len(c.Config.Space) == 0 {
		return &ValidationError{Field: "Config.Space", Reason: "cannot be empty"}
	}

	// The vector length must match the space the config describes
	vars, err := space.BuildVars(c.Config.Space)
	if err != nil {
		return &ValidationError{Field: "Config.Space", Reason: err.Error()}
	}
	sp, err := space.NewSpace(vars)
	if err != nil {
		return &ValidationError{Field: "Config.Space", Reason: err.Error()}
	}
	if len(c.BestVector) != sp.Dim() {
		return &ValidationError{
			Field:  "BestVector",
			Reason: fmt.Sprintf("length mismatch: space has %d dimensions, vector has %d", sp.Dim(), len(c.BestVector)),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given
// config. The space and objective must be identical; iteration counts and
// seeds may differ.
func (c *Checkpoint) IsCompatible(config RunConfig) error {
	if c.Config.Objective != config.Objective {
		return &CompatibilityError{
			Field:    "Objective",
			Expected: c.Config.Objective,
			Actual:   config.Objective,
		}
	}
	if !reflect.DeepEqual(c.Config.Space, config.Space) {
		return &CompatibilityError{
			Field:    "Space",
			Expected: fmt.Sprintf("%d variables", len(c.Config.Space)),
			Actual:   "a different variable list",
		}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
