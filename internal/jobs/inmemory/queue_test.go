package inmemory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porkytheblack/yuki/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.ProcessDocumentJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, want)
	return nil
}

func TestQueueProcessesJob(t *testing.T) {
	store := NewStore()
	queue := NewQueue(4, store)
	defer queue.Close()

	require.NoError(t, queue.Start(context.Background(), func(_ context.Context, job *jobs.ProcessDocumentJob) error {
		job.DocumentID = "doc-1"
		job.EntriesCreated = 3
		return nil
	}))

	job := &jobs.ProcessDocumentJob{Filename: "march.pdf", DocumentType: "statement", Data: []byte("pdf bytes")}
	require.NoError(t, queue.PublishProcessDocument(context.Background(), job))
	require.NotEmpty(t, job.JobID)

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	assert.Equal(t, "doc-1", done.DocumentID)
	assert.Equal(t, 3, done.EntriesCreated)
	assert.Nil(t, done.Data)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.CompletedAt)
}

func TestQueueFailureIsTerminal(t *testing.T) {
	store := NewStore()
	queue := NewQueue(4, store)
	defer queue.Close()

	var calls int
	var mu sync.Mutex
	require.NoError(t, queue.Start(context.Background(), func(context.Context, *jobs.ProcessDocumentJob) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return errors.New("provider unreachable")
	}))

	job := &jobs.ProcessDocumentJob{Filename: "bad.pdf", DocumentType: "statement"}
	require.NoError(t, queue.PublishProcessDocument(context.Background(), job))

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	assert.Equal(t, "provider unreachable", failed.Error)

	// no retry ever fires
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestQueueProcessesSequentially(t *testing.T) {
	store := NewStore()
	queue := NewQueue(8, store)
	defer queue.Close()

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	require.NoError(t, queue.Start(context.Background(), func(context.Context, *jobs.ProcessDocumentJob) error {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	}))

	var last *jobs.ProcessDocumentJob
	for i := 0; i < 4; i++ {
		last = &jobs.ProcessDocumentJob{Filename: "doc.pdf", DocumentType: "receipt"}
		require.NoError(t, queue.PublishProcessDocument(context.Background(), last))
	}
	waitForStatus(t, store, last.JobID, jobs.JobStatusCompleted)

	mu.Lock()
	assert.Equal(t, 1, maxInFlight)
	mu.Unlock()
}

func TestClosedQueueRejectsPublish(t *testing.T) {
	queue := NewQueue(1, NewStore())
	require.NoError(t, queue.Close())

	err := queue.PublishProcessDocument(context.Background(), &jobs.ProcessDocumentJob{Filename: "x"})
	assert.Error(t, err)
}

func TestStoreListsNewestFirst(t *testing.T) {
	store := NewStore()
	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveJob(context.Background(), &jobs.ProcessDocumentJob{
			JobID:     id,
			Status:    jobs.JobStatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, store.SaveJob(context.Background(), &jobs.ProcessDocumentJob{
		JobID:     "pending",
		Status:    jobs.JobStatusPending,
		CreatedAt: base.Add(10 * time.Second),
	}))

	listed, err := store.ListJobs(context.Background(), jobs.JobFilter{Status: jobs.JobStatusCompleted, Limit: 2})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "c", listed[0].JobID)
	assert.Equal(t, "b", listed[1].JobID)
}
