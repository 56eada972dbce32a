package testsupport

import (
	"context"
	"testing"

	"gavel/internal/config"
	"gavel/internal/meeting"
	"gavel/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Enqueue adds a job for tests using the provided store.
func Enqueue(t testing.TB, store *queue.Store, ref meeting.Ref, priority int) *queue.Job {
	t.Helper()

	job, err := store.Enqueue(context.Background(), ref, priority, nil)
	if err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	return job
}

// Ref returns a valid meeting reference with a distinguishing day offset.
func Ref(day int) meeting.Ref {
	return meeting.Ref{
		Year:          2025,
		Month:         1,
		Day:           day,
		Committee:     "House Chambers",
		Code:          "house",
		ScheduledTime: "0900AM",
	}
}
