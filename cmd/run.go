package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/cwbudde/mixedopt/internal/objective"
	"github.com/cwbudde/mixedopt/internal/opt"
	"github.com/cwbudde/mixedopt/internal/space"
	"github.com/cwbudde/mixedopt/internal/store"
	"github.com/spf13/cobra"
)

var (
	spacePath     string
	objectiveName string
	outPath       string
	traceDir      string
	iters         int
	popSize       int
	seed          int64
	restarts      int
)

// runResult is the JSON document written by the run command.
type runResult struct {
	Objective   string           `json:"objective"`
	BestVector  []float64        `json:"bestVector"`
	BestValues  []any            `json:"bestValues"`
	BestCost    float64          `json:"bestCost"`
	InitialCost float64          `json:"initialCost"`
	Evaluations int              `json:"evaluations"`
	Cache       store.CacheStats `json:"cache"`
	Elapsed     float64          `json:"elapsedSeconds"`
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run single-shot optimization",
	Long:  `Optimizes a builtin objective over the mixed space defined in a JSON file and writes the result as JSON.`,
	RunE:  runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&spacePath, "space", "", "Path to space definition JSON (required)")
	runCmd.Flags().StringVar(&objectiveName, "objective", "sum-squares", "Builtin objective name")
	runCmd.Flags().StringVar(&outPath, "out", "", "Result JSON path (default stdout)")
	runCmd.Flags().StringVar(&traceDir, "trace-dir", "", "Write a progress trace under this directory (empty = disabled)")
	runCmd.Flags().IntVar(&iters, "iters", 100, "Max iterations per restart")
	runCmd.Flags().IntVar(&popSize, "pop", 30, "Population size")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().IntVar(&restarts, "restarts", 1, "Independent restarts, best-of is kept")

	runCmd.MarkFlagRequired("space")
	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	slog.Info("Starting optimization", "objective", objectiveName, "iters", iters, "pop", popSize, "restarts", restarts)

	specs, err := space.LoadSpecs(spacePath)
	if err != nil {
		return fmt.Errorf("failed to load space: %w", err)
	}

	vars, err := space.BuildVars(specs)
	if err != nil {
		return fmt.Errorf("invalid space: %w", err)
	}

	fn, err := objective.Builtin(objectiveName)
	if err != nil {
		return err
	}

	adapter, err := objective.New(fn, vars)
	if err != nil {
		return err
	}

	lower, upper := adapter.LowerUpper()
	dim := adapter.Dim()
	slog.Info("Built space", "variables", len(vars), "dimensions", dim)

	// Initial guess: midpoint of every encoded dimension
	initial := make([]float64, dim)
	for i := range initial {
		initial[i] = (lower[i] + upper[i]) / 2
	}
	initialCost, err := adapter.Call(initial)
	if err != nil {
		return fmt.Errorf("initial evaluation failed: %w", err)
	}

	var trace *store.TraceWriter
	if traceDir != "" {
		jobID := fmt.Sprintf("run-%d", time.Now().Unix())
		trace, err = store.NewTraceWriter(traceDir, jobID, false)
		if err != nil {
			return fmt.Errorf("failed to open trace: %w", err)
		}
		defer trace.Close()
		slog.Info("Writing trace", "path", trace.Path())
	}

	evals := 0
	best := math.Inf(1)
	eval := func(vector []float64) float64 {
		cost, err := adapter.Call(vector)
		if err != nil {
			cost = math.Inf(1)
		}
		evals++
		if cost < best {
			best = cost
			if trace != nil {
				info := adapter.CacheInfo()
				trace.Write(store.TraceEntry{
					Evaluations: evals,
					BestCost:    best,
					CacheHits:   info.Hits,
					CacheMisses: info.Misses,
					Timestamp:   time.Now(),
				})
			}
		}
		return cost
	}

	start := time.Now()
	tracker := opt.NewConvergenceTracker(opt.DefaultConvergenceConfig())
	newOpt := func(restart int) opt.Optimizer {
		return opt.NewMayfly(iters, popSize, seed+int64(restart))
	}
	bestVector, bestCost := opt.RunRestarts(newOpt, eval, lower, upper, dim, restarts, tracker)
	elapsed := time.Since(start)

	if initialCost < bestCost {
		bestVector, bestCost = initial, initialCost
	}

	bestValues, err := adapter.Decode(bestVector)
	if err != nil {
		return fmt.Errorf("failed to decode best vector: %w", err)
	}

	info := adapter.CacheInfo()
	slog.Info("Optimization complete",
		"elapsed", elapsed,
		"initial_cost", initialCost,
		"best_cost", bestCost,
		"evaluations", evals,
		"cache_hits", info.Hits,
		"cache_misses", info.Misses,
	)

	result := runResult{
		Objective:   objectiveName,
		BestVector:  bestVector,
		BestValues:  bestValues,
		BestCost:    bestCost,
		InitialCost: initialCost,
		Evaluations: evals,
		Cache:       store.CacheStats{Hits: info.Hits, Misses: info.Misses, CurrSize: info.CurrSize},
		Elapsed:     elapsed.Seconds(),
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}
	data = append(data, '\n')

	if outPath == "" {
		os.Stdout.Write(data)
		return nil
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	fmt.Printf("Wrote %s (cost: %.6g -> %.6g, %d evaluations)\n", outPath, initialCost, bestCost, evals)
	return nil
}
