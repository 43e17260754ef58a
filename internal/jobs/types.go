package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeProcessDocument represents a document ingestion job.
	JobTypeProcessDocument JobType = "process_document"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
)

// ProcessDocumentJob carries one uploaded file through extraction. The raw
// bytes ride along in the job so the upload request can return immediately.
type ProcessDocumentJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Filename is the original name of the uploaded file.
	Filename string `json:"filename"`

	// DocumentType is how the user classified the upload: statement or receipt.
	DocumentType string `json:"document_type"`

	// Data is the raw file content. Cleared once the job completes so the
	// store does not pin large uploads in memory.
	Data []byte `json:"-"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// DocumentID is set once the document row exists.
	DocumentID string `json:"document_id,omitempty"`

	// EntriesCreated is the number of ledger entries produced.
	EntriesCreated int `json:"entries_created"`

	// ItemsCreated is the number of purchased items produced.
	ItemsCreated int `json:"items_created"`

	// ReceiptID is set when the upload produced a structured receipt.
	ReceiptID string `json:"receipt_id,omitempty"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ProcessDocumentJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *ProcessDocumentJob) GetType() JobType {
	return JobTypeProcessDocument
}

// GetStatus implements the Job interface.
func (j *ProcessDocumentJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishProcessDocument publishes a document ingestion job.
	PublishProcessDocument(ctx context.Context, job *ProcessDocumentJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job. A returned error marks the
// job failed; jobs are never retried, the user re-uploads instead.
type JobHandler func(ctx context.Context, job *ProcessDocumentJob) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ProcessDocumentJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ProcessDocumentJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ProcessDocumentJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int
}
