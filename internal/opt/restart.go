package opt

import (
	"log/slog"
	"math"
)

// ConvergenceConfig defines parameters for stopping a multi-restart run early
type ConvergenceConfig struct {
	// Enabled controls whether convergence detection is active
	Enabled bool

	// Patience is the number of restarts with no significant improvement
	// before stopping
	Patience int

	// Threshold is the minimum relative improvement required to count as
	// progress, e.g. 0.001 = 0.1%
	Threshold float64
}

// DefaultConvergenceConfig returns sensible defaults for convergence detection
func DefaultConvergenceConfig() ConvergenceConfig {
	return ConvergenceConfig{
		Enabled:   true,
		Patience:  3,
		Threshold: 0.001,
	}
}

// ConvergenceTracker tracks cost history across restarts and detects when
// further restarts stop paying off
type ConvergenceTracker struct {
	config          ConvergenceConfig
	bestCost        float64
	lastSignificant float64
	staleCount      int
}

// NewConvergenceTracker creates a new convergence tracker with the given config
func NewConvergenceTracker(config ConvergenceConfig) *ConvergenceTracker {
	return &ConvergenceTracker{
		config:          config,
		bestCost:        math.Inf(1),
		lastSignificant: math.Inf(1),
	}
}

// Update records a new cost value and returns true if convergence is detected
func (c *ConvergenceTracker) Update(cost float64) bool {
	if !c.config.Enabled {
		return false
	}

	if cost < c.bestCost {
		c.bestCost = cost
	}

	if math.IsInf(c.lastSignificant, 1) {
		c.lastSignificant = cost
		return false
	}

	relativeImprovement := (c.lastSignificant - cost) / c.lastSignificant
	if relativeImprovement >= c.config.Threshold {
		c.lastSignificant = cost
		c.staleCount = 0
		return false
	}

	c.staleCount++
	if c.staleCount >= c.config.Patience {
		slog.Info("Convergence detected, stopping restarts",
			"stale_count", c.staleCount,
			"patience", c.config.Patience,
			"best_cost", c.bestCost,
		)
		return true
	}
	return false
}

// BestCost returns the best cost seen so far
func (c *ConvergenceTracker) BestCost() float64 {
	return c.bestCost
}

// StaleCount returns the current number of restarts without improvement
func (c *ConvergenceTracker) StaleCount() int {
	return c.staleCount
}

// RunRestarts runs up to restarts independent optimizations, reseeding each
// via newOpt, and keeps the best result. Restarts share the caller's eval, so
// a memoizing adapter carries its cache across restarts. A non-nil tracker
// can stop the loop early once improvements stall.
func RunRestarts(newOpt func(restart int) Optimizer, eval func([]float64) float64, lower, upper []float64, dim, restarts int, tracker *ConvergenceTracker) ([]float64, float64) {
	if restarts < 1 {
		restarts = 1
	}

	bestCost := math.Inf(1)
	var bestParams []float64

	for i := 0; i < restarts; i++ {
		params, cost := newOpt(i).Run(eval, lower, upper, dim)
		if cost < bestCost {
			bestCost = cost
			bestParams = params
		}
		slog.Debug("Restart complete", "restart", i, "cost", cost, "best_cost", bestCost)

		if tracker != nil && tracker.Update(cost) {
			break
		}
	}

	return bestParams, bestCost
}
