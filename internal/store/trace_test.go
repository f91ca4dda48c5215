package store

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestTraceWriteRead(t *testing.T) {
	baseDir := t.TempDir()

	tw, err := NewTraceWriter(baseDir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}

	entries := []TraceEntry{
		{Evaluations: 10, BestCost: 50.0, CacheHits: 2, CacheMisses: 8, Timestamp: time.Now().UTC()},
		{Evaluations: 20, BestCost: 30.0, CacheHits: 5, CacheMisses: 15, Timestamp: time.Now().UTC()},
		{Evaluations: 30, BestCost: 12.5, CacheHits: 9, CacheMisses: 21, Timestamp: time.Now().UTC(), BestVector: []float64{1.0, 2.0}},
	}
	for _, entry := range entries {
		if err := tw.Write(entry); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	tr, err := NewTraceReader(baseDir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	got, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Errorf("Trace round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTraceReadEOF(t *testing.T) {
	baseDir := t.TempDir()

	tw, err := NewTraceWriter(baseDir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	if err := tw.Write(TraceEntry{Evaluations: 1, BestCost: 1.0, Timestamp: time.Now()}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	tr, err := NewTraceReader(baseDir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	if _, err := tr.Read(); err != nil {
		t.Fatalf("First read failed: %v", err)
	}
	if _, err := tr.Read(); err != io.EOF {
		t.Errorf("Expected io.EOF after last entry, got %v", err)
	}
}

func TestTraceAppend(t *testing.T) {
	baseDir := t.TempDir()

	tw, err := NewTraceWriter(baseDir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	tw.Write(TraceEntry{Evaluations: 1, BestCost: 9.0, Timestamp: time.Now()})
	tw.Close()

	// Resumed runs append rather than truncate
	tw, err = NewTraceWriter(baseDir, "job-1", true)
	if err != nil {
		t.Fatalf("NewTraceWriter append failed: %v", err)
	}
	tw.Write(TraceEntry{Evaluations: 2, BestCost: 4.0, Timestamp: time.Now()})
	tw.Close()

	tr, err := NewTraceReader(baseDir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	got, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries after append, got %d", len(got))
	}
	if got[1].Evaluations != 2 {
		t.Errorf("Second entry evaluations %d, want 2", got[1].Evaluations)
	}
}

func TestTraceReaderMissing(t *testing.T) {
	_, err := NewTraceReader(t.TempDir(), "no-such-job")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestDeleteTrace(t *testing.T) {
	baseDir := t.TempDir()

	tw, err := NewTraceWriter(baseDir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	tw.Write(TraceEntry{Evaluations: 1, BestCost: 1.0, Timestamp: time.Now()})
	tw.Close()

	if err := DeleteTrace(baseDir, "job-1"); err != nil {
		t.Fatalf("DeleteTrace failed: %v", err)
	}
	if _, err := NewTraceReader(baseDir, "job-1"); err == nil {
		t.Error("Trace should be gone after delete")
	}

	// Deleting an absent trace is not an error
	if err := DeleteTrace(baseDir, "job-1"); err != nil {
		t.Errorf("Deleting twice should be a no-op: %v", err)
	}
}
