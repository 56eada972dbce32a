// Package queue persists acquisition jobs in SQLite and enforces the job
// state machine: pending → processing → {completed, failed}, with
// failed → pending only through an explicit retry. Enqueue is idempotent on
// the meeting natural key and claiming is a conditional single-row
// transition, so concurrent workers never double-process a job.
package queue
