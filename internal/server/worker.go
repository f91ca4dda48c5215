package server

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cwbudde/mixedopt/internal/objective"
	"github.com/cwbudde/mixedopt/internal/opt"
	"github.com/cwbudde/mixedopt/internal/space"
	"github.com/cwbudde/mixedopt/internal/store"
)

// runJob executes an optimization job in the background.
// If checkpointStore is not nil and the job has checkpointInterval > 0,
// periodic checkpoints are saved.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.Snapshot(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "objective", job.Config.Objective, "variables", len(job.Config.Space))

	// Build the mixed parameter space
	vars, err := space.BuildVars(job.Config.Space)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("invalid space: %w", err))
		return err
	}

	fn, err := objective.Builtin(job.Config.Objective)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	adapter, err := objective.New(fn, vars)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	lower, upper := adapter.LowerUpper()
	dim := adapter.Dim()

	// Initial guess: midpoint of every encoded dimension
	initial := make([]float64, dim)
	for i := range initial {
		initial[i] = (lower[i] + upper[i]) / 2
	}
	initialCost, err := adapter.Call(initial)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("initial evaluation failed: %w", err))
		return err
	}

	jm.UpdateJob(jobID, func(j *Job) {
		j.InitialCost = initialCost
		j.BestCost = initialCost
		j.BestVector = initial
	})

	start := time.Now()

	// Check for cancellation before starting expensive operation
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	// The eval closure runs in this goroutine only; the adapter's cache is
	// not synchronized, so all reads of its counters happen here and get
	// published into the job under the manager's lock.
	evals := 0
	bestSoFar := math.Inf(1)
	eval := func(vector []float64) float64 {
		cost, err := adapter.Call(vector)
		if err != nil {
			cost = math.Inf(1)
		}
		evals++
		info := adapter.CacheInfo()
		if cost < bestSoFar {
			bestSoFar = cost
			vec := append([]float64(nil), vector...)
			jm.UpdateJob(jobID, func(j *Job) {
				j.BestCost = cost
				j.BestVector = vec
				j.Evaluations = evals
				j.Cache = store.CacheStats{Hits: info.Hits, Misses: info.Misses, CurrSize: info.CurrSize}
			})
		} else {
			jm.UpdateJob(jobID, func(j *Job) {
				j.Evaluations = evals
				j.Cache = store.CacheStats{Hits: info.Hits, Misses: info.Misses, CurrSize: info.CurrSize}
			})
		}
		return cost
	}

	// Start progress monitoring goroutine
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	// Start checkpoint monitoring goroutine if enabled; closing the done
	// channel is only valid when the monitor actually owns it
	checkpointing := checkpointStore != nil && job.Config.CheckpointInterval > 0
	checkpointDone := make(chan struct{})
	if checkpointing {
		go monitorCheckpoints(ctx, jm, checkpointStore, jobID, checkpointDone)
	}

	restarts := job.Config.Restarts
	if restarts < 1 {
		restarts = 1
	}
	tracker := opt.NewConvergenceTracker(opt.DefaultConvergenceConfig())
	newOpt := func(restart int) opt.Optimizer {
		return opt.NewMayfly(job.Config.Iters, job.Config.PopSize, job.Config.Seed+int64(restart))
	}
	bestVector, bestCost := opt.RunRestarts(newOpt, eval, lower, upper, dim, restarts, tracker)

	close(progressDone)
	if checkpointing {
		close(checkpointDone)
	}
	elapsed := time.Since(start)

	// Check for cancellation after optimization
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	// The optimizer may return its own best; the initial guess can still win
	if initialCost < bestCost {
		bestVector, bestCost = initial, initialCost
	}

	bestValues, err := adapter.Decode(bestVector)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to decode best vector: %w", err))
		return err
	}

	info := adapter.CacheInfo()
	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestVector = bestVector
		j.BestValues = bestValues
		j.BestCost = bestCost
		j.Evaluations = evals
		j.Cache = store.CacheStats{Hits: info.Hits, Misses: info.Misses, CurrSize: info.CurrSize}
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	// Save a final checkpoint so completed runs can be resumed or inspected
	if checkpointStore != nil {
		if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
			slog.Warn("Failed to save final checkpoint", "job_id", jobID, "error", err)
		}
	}

	eps := float64(evals) / elapsed.Seconds()
	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"initial_cost", initialCost,
		"best_cost", bestCost,
		"evaluations", evals,
		"cache_hits", info.Hits,
		"evals_per_second", eps,
	)

	// Broadcast final completion event
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:       jobID,
		State:       StateCompleted,
		Evaluations: evals,
		BestCost:    bestCost,
		CacheHits:   info.Hits,
		CacheMisses: info.Misses,
		EvalsPerSec: eps,
		Timestamp:   time.Now(),
	})

	return nil
}

// monitorProgress periodically broadcasts progress events during optimization
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.Snapshot(jobID)
			if !exists {
				return
			}

			elapsed := time.Since(startTime).Seconds()
			var eps float64
			if elapsed > 0 {
				eps = float64(job.Evaluations) / elapsed
			}

			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:       jobID,
				State:       job.State,
				Evaluations: job.Evaluations,
				BestCost:    job.BestCost,
				CacheHits:   job.Cache.Hits,
				CacheMisses: job.Cache.Misses,
				EvalsPerSec: eps,
				Timestamp:   time.Now(),
			})
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// monitorCheckpoints periodically saves checkpoints during optimization
func monitorCheckpoints(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string, done chan struct{}) {
	job, exists := jm.Snapshot(jobID)
	if !exists {
		return
	}

	interval := time.Duration(job.Config.CheckpointInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}
}

// saveCheckpoint saves a checkpoint for the given job
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.Snapshot(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Skip if no best vector yet
	if len(job.BestVector) == 0 {
		slog.Debug("Skipping checkpoint, no best vector yet", "job_id", jobID)
		return nil
	}

	checkpoint := store.NewCheckpoint(
		jobID,
		job.BestVector,
		job.BestValues,
		job.BestCost,
		job.InitialCost,
		job.Evaluations,
		job.Cache,
		job.Config,
	)

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved",
		"job_id", jobID,
		"evaluations", job.Evaluations,
		"best_cost", job.BestCost,
	)
	return nil
}
