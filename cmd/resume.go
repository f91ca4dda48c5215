package main

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cwbudde/mixedopt/internal/objective"
	"github.com/cwbudde/mixedopt/internal/opt"
	"github.com/cwbudde/mixedopt/internal/space"
	"github.com/cwbudde/mixedopt/internal/store"
	"github.com/spf13/cobra"
)

var (
	resumeDataDir  string
	resumeIters    int
	resumePop      int
	resumeSeed     int64
	resumeRestarts int
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume optimization from a checkpoint",
	Long: `Loads a saved checkpoint and continues optimizing from its best vector.
The optimizer restarts with a fresh population; the checkpoint's best result
is kept if the new run does not improve on it.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	resumeCmd.Flags().IntVar(&resumeIters, "iters", 0, "Max iterations per restart (0 = reuse checkpoint config)")
	resumeCmd.Flags().IntVar(&resumePop, "pop", 0, "Population size (0 = reuse checkpoint config)")
	resumeCmd.Flags().Int64Var(&resumeSeed, "seed", 0, "Random seed (0 = checkpoint seed + 1)")
	resumeCmd.Flags().IntVar(&resumeRestarts, "restarts", 1, "Independent restarts")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("invalid checkpoint: %w", err)
	}

	// The resumed run reuses the checkpoint's space and objective; only the
	// optimizer budget and seed may change.
	config := checkpoint.Config
	if resumeIters > 0 {
		config.Iters = resumeIters
	}
	if resumePop > 0 {
		config.PopSize = resumePop
	}
	if resumeSeed != 0 {
		config.Seed = resumeSeed
	} else {
		config.Seed = checkpoint.Config.Seed + 1
	}
	if err := checkpoint.IsCompatible(config); err != nil {
		return fmt.Errorf("cannot resume: %w", err)
	}

	slog.Info("Resuming job",
		"job_id", jobID,
		"checkpoint_cost", checkpoint.BestCost,
		"checkpoint_evaluations", checkpoint.Evaluations,
		"iters", config.Iters,
		"pop", config.PopSize,
		"seed", config.Seed,
	)

	vars, err := space.BuildVars(config.Space)
	if err != nil {
		return fmt.Errorf("invalid space: %w", err)
	}
	fn, err := objective.Builtin(config.Objective)
	if err != nil {
		return err
	}
	adapter, err := objective.New(fn, vars)
	if err != nil {
		return err
	}

	// Re-evaluate the saved vector so the resumed cache has its entry and
	// the saved cost is verified against the current objective.
	savedCost, err := adapter.Call(checkpoint.BestVector)
	if err != nil {
		return fmt.Errorf("saved vector no longer evaluates: %w", err)
	}
	if math.Abs(savedCost-checkpoint.BestCost) > 1e-9 {
		slog.Warn("Checkpoint cost differs on re-evaluation", "saved", checkpoint.BestCost, "recomputed", savedCost)
	}

	lower, upper := adapter.LowerUpper()
	dim := adapter.Dim()

	evals := 0
	eval := func(vector []float64) float64 {
		cost, err := adapter.Call(vector)
		if err != nil {
			cost = math.Inf(1)
		}
		evals++
		return cost
	}

	start := time.Now()
	tracker := opt.NewConvergenceTracker(opt.DefaultConvergenceConfig())
	newOpt := func(restart int) opt.Optimizer {
		return opt.NewMayfly(config.Iters, config.PopSize, config.Seed+int64(restart))
	}
	bestVector, bestCost := opt.RunRestarts(newOpt, eval, lower, upper, dim, resumeRestarts, tracker)
	elapsed := time.Since(start)

	// Best-of against the checkpoint; a resume never loses ground
	improved := bestCost < savedCost
	if !improved {
		bestVector, bestCost = checkpoint.BestVector, savedCost
	}

	bestValues, err := adapter.Decode(bestVector)
	if err != nil {
		return fmt.Errorf("failed to decode best vector: %w", err)
	}

	info := adapter.CacheInfo()
	totalEvals := checkpoint.Evaluations + evals
	updated := store.NewCheckpoint(
		jobID,
		bestVector,
		bestValues,
		bestCost,
		checkpoint.InitialCost,
		totalEvals,
		store.CacheStats{Hits: info.Hits, Misses: info.Misses, CurrSize: info.CurrSize},
		config,
	)
	if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Resume complete",
		"job_id", jobID,
		"elapsed", elapsed,
		"improved", improved,
		"best_cost", bestCost,
		"total_evaluations", totalEvals,
	)

	if improved {
		fmt.Printf("Resumed %s: cost %.6g -> %.6g (%d new evaluations)\n", jobID, savedCost, bestCost, evals)
	} else {
		fmt.Printf("Resumed %s: no improvement, best cost stays %.6g (%d new evaluations)\n", jobID, savedCost, evals)
	}
	return nil
}
