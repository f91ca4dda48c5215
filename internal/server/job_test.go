package server

import (
	"testing"
	"time"

	"github.com/cwbudde/mixedopt/internal/space"
)

func testJobConfig() RunConfig {
	return RunConfig{
		Space: []space.VarSpec{
			{Type: "choice", Items: []any{"a", "b"}},
			{Type: "randint", Lower: 0, Upper: 6},
			{Type: "uniform", Lower: -1, Upper: 1},
		},
		Objective: "sum-squares",
		Iters:     10,
		PopSize:   20,
		Seed:      42,
	}
}

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testJobConfig())

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}

	if job.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", job.State)
	}

	if job.Config.Objective != "sum-squares" {
		t.Errorf("Config not set correctly")
	}
}

func TestJobManager_GetJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testJobConfig())

	retrieved, exists := jm.GetJob(job.ID)
	if !exists {
		t.Error("Job should exist")
	}

	if retrieved.ID != job.ID {
		t.Error("Retrieved wrong job")
	}

	_, exists = jm.GetJob("nonexistent")
	if exists {
		t.Error("Should not find nonexistent job")
	}
}

func TestJobManager_Snapshot(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testJobConfig())
	jm.UpdateJob(job.ID, func(j *Job) {
		j.BestCost = 3.5
	})

	snapshot, exists := jm.Snapshot(job.ID)
	if !exists {
		t.Fatal("Job should exist")
	}
	if snapshot.BestCost != 3.5 {
		t.Errorf("Snapshot BestCost %v, want 3.5", snapshot.BestCost)
	}

	// Mutating the snapshot must not touch the stored job
	snapshot.BestCost = 99.0
	current, _ := jm.Snapshot(job.ID)
	if current.BestCost != 3.5 {
		t.Errorf("Stored job changed through snapshot: %v", current.BestCost)
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	jm := NewJobManager()

	if len(jm.ListJobs()) != 0 {
		t.Error("Should start with no jobs")
	}

	jm.CreateJob(testJobConfig())
	jm.CreateJob(testJobConfig())

	jobs := jm.ListJobs()
	if len(jobs) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jobs))
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testJobConfig())

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.Evaluations = 10
		j.BestCost = 123.45
	})

	if err != nil {
		t.Errorf("Update should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateRunning {
		t.Error("State should be updated")
	}
	if updated.Evaluations != 10 {
		t.Error("Evaluations should be updated")
	}
	if updated.BestCost != 123.45 {
		t.Error("BestCost should be updated")
	}

	err = jm.UpdateJob("nonexistent", func(j *Job) {})
	if err == nil {
		t.Error("Update of nonexistent job should fail")
	}
}

func TestJobManager_GetRunningJobs(t *testing.T) {
	jm := NewJobManager()

	running := jm.CreateJob(testJobConfig())
	jm.CreateJob(testJobConfig())
	jm.UpdateJob(running.ID, func(j *Job) {
		j.State = StateRunning
	})

	jobs := jm.GetRunningJobs()
	if len(jobs) != 1 {
		t.Fatalf("Expected 1 running job, got %d", len(jobs))
	}
	if jobs[0].ID != running.ID {
		t.Error("Wrong job reported as running")
	}
}

func TestJobManager_ThreadSafety(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testJobConfig())

	// Simulate concurrent updates
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(n int) {
			jm.UpdateJob(job.ID, func(j *Job) {
				j.Evaluations = n
				time.Sleep(1 * time.Millisecond)
			})
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	if _, exists := jm.GetJob(job.ID); !exists {
		t.Error("Job should survive concurrent updates")
	}
}
