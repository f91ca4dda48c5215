// Package store persists optimization run checkpoints and eval traces.
package store

// Store is the persistence interface for run checkpoints.
type Store interface {
	// SaveCheckpoint atomically saves a checkpoint for the given job,
	// overwriting any previous one. Implementations should use atomic write
	// strategies (e.g. temp file + rename) to prevent corruption.
	SaveCheckpoint(jobID string, checkpoint *Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for the given job. Returns a
	// *NotFoundError if none exists.
	LoadCheckpoint(jobID string) (*Checkpoint, error)

	// ListCheckpoints returns metadata for all available checkpoints.
	ListCheckpoints() ([]CheckpointInfo, error)

	// DeleteCheckpoint removes the checkpoint and all associated artifacts.
	DeleteCheckpoint(jobID string) error
}

// NotFoundError indicates no checkpoint exists for a job.
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	return "no checkpoint found for job " + e.JobID
}
