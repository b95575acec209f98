package services

import "github.com/cashbookhq/cashbook-bot/internal/core/domain"

// MirrorSvcFacade is the async worker pool applying committed local mutations
// to the spreadsheet mirror.
type MirrorSvcFacade interface {
	// Enqueue accepts a task; non-blocking, always succeeds.
	Enqueue(task *domain.MirrorTask)

	// QueueDepth reports the number of tasks waiting or retrying.
	QueueDepth() int

	// Stop flips the stop flag and waits for in-flight tasks to complete.
	// Queued tasks are dropped; the reconciler closes the resulting gaps.
	Stop()
}
