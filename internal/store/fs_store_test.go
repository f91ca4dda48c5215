package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/mixedopt/internal/space"
	"github.com/google/go-cmp/cmp"
)

func testRunConfig() RunConfig {
	return RunConfig{
		Space: []space.VarSpec{
			{Type: "choice", Items: []any{"a", "b"}},
			{Type: "randint", Lower: 0, Upper: 6},
			{Type: "uniform", Lower: -1, Upper: 1},
		},
		Objective: "sum-squares",
		Iters:     100,
		PopSize:   30,
		Seed:      42,
	}
}

func testCheckpoint(jobID string) *Checkpoint {
	return NewCheckpoint(
		jobID,
		[]float64{1.0, 0.0, 3.0, 0.25},
		[]any{"a", 3, 0.25},
		9.0625,
		14.0,
		250,
		CacheStats{Hits: 50, Misses: 200, CurrSize: 200},
		testRunConfig(),
	)
}

func TestFSStoreSaveLoad(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	saved := testCheckpoint("job-1")
	if err := fs.SaveCheckpoint("job-1", saved); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	loaded, err := fs.LoadCheckpoint("job-1")
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}

	if diff := cmp.Diff(saved.BestVector, loaded.BestVector); diff != "" {
		t.Errorf("BestVector mismatch (-want +got):\n%s", diff)
	}
	if loaded.BestCost != saved.BestCost {
		t.Errorf("BestCost %v, want %v", loaded.BestCost, saved.BestCost)
	}
	if loaded.Evaluations != saved.Evaluations {
		t.Errorf("Evaluations %d, want %d", loaded.Evaluations, saved.Evaluations)
	}
	if loaded.Cache != saved.Cache {
		t.Errorf("Cache %+v, want %+v", loaded.Cache, saved.Cache)
	}
	if diff := cmp.Diff(saved.Config, loaded.Config); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}

func TestFSStoreOverwrite(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	first := testCheckpoint("job-1")
	if err := fs.SaveCheckpoint("job-1", first); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	second := testCheckpoint("job-1")
	second.BestCost = 1.5
	second.Evaluations = 500
	if err := fs.SaveCheckpoint("job-1", second); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	loaded, err := fs.LoadCheckpoint("job-1")
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if loaded.BestCost != 1.5 || loaded.Evaluations != 500 {
		t.Errorf("Overwrite not applied: cost %v, evaluations %d", loaded.BestCost, loaded.Evaluations)
	}
}

func TestFSStoreLoadMissing(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	_, err = fs.LoadCheckpoint("no-such-job")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestFSStoreEmptyJobID(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	if err := fs.SaveCheckpoint("", testCheckpoint("x")); err == nil {
		t.Error("SaveCheckpoint should reject empty job ID")
	}
	if _, err := fs.LoadCheckpoint(""); err == nil {
		t.Error("LoadCheckpoint should reject empty job ID")
	}
	if err := fs.DeleteCheckpoint(""); err == nil {
		t.Error("DeleteCheckpoint should reject empty job ID")
	}
}

func TestFSStoreList(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	// Empty store lists cleanly
	infos, err := fs.ListCheckpoints()
	if err != nil {
		t.Fatalf("ListCheckpoints failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("Expected 0 checkpoints, got %d", len(infos))
	}

	for _, jobID := range []string{"job-a", "job-b"} {
		if err := fs.SaveCheckpoint(jobID, testCheckpoint(jobID)); err != nil {
			t.Fatalf("SaveCheckpoint(%s) failed: %v", jobID, err)
		}
	}

	infos, err = fs.ListCheckpoints()
	if err != nil {
		t.Fatalf("ListCheckpoints failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 checkpoints, got %d", len(infos))
	}
	for _, info := range infos {
		if info.Objective != "sum-squares" {
			t.Errorf("Objective %q, want sum-squares", info.Objective)
		}
		if info.Variables != 3 {
			t.Errorf("Variables %d, want 3", info.Variables)
		}
	}
}

func TestFSStoreListSkipsCorrupted(t *testing.T) {
	baseDir := t.TempDir()
	fs, err := NewFSStore(baseDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	if err := fs.SaveCheckpoint("good", testCheckpoint("good")); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	// Corrupt a second checkpoint by hand
	badDir := filepath.Join(baseDir, "jobs", "bad")
	if err := os.MkdirAll(badDir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(badDir, "checkpoint.json"), []byte("{broken"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	infos, err := fs.ListCheckpoints()
	if err != nil {
		t.Fatalf("ListCheckpoints failed: %v", err)
	}
	if len(infos) != 1 || infos[0].JobID != "good" {
		t.Errorf("Corrupted checkpoint should be skipped, got %+v", infos)
	}
}

func TestFSStoreDelete(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	if err := fs.SaveCheckpoint("job-1", testCheckpoint("job-1")); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}
	if err := fs.DeleteCheckpoint("job-1"); err != nil {
		t.Fatalf("DeleteCheckpoint failed: %v", err)
	}

	_, err = fs.LoadCheckpoint("job-1")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError after delete, got %v", err)
	}

	if err := fs.DeleteCheckpoint("job-1"); err == nil {
		t.Error("Deleting twice should error")
	}
}
