package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cashbookhq/cashbook-bot/internal/apperrors"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/core/ports"
	portssvc "github.com/cashbookhq/cashbook-bot/internal/core/ports/services"
)

const (
	defaultMaxRetries    = 3
	maxRetrySleepSeconds = 10
)

// MirrorService runs the async worker pool applying committed local mutations
// to the spreadsheet mirror. The queue is an unbounded FIFO; enqueue never
// blocks. Transient failures are retried with capped exponential backoff and
// re-enqueued at the tail, so a retrying task may be overtaken; the reconciler
// closes any resulting gaps.
type MirrorService struct {
	gateway  ports.SpreadsheetGateway
	notifier ports.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []*domain.MirrorTask
	pending int
	stopped bool
	wg      sync.WaitGroup

	// sleep is swappable so retry tests do not wait wall-clock seconds.
	sleep func(time.Duration)
}

var _ portssvc.MirrorSvcFacade = (*MirrorService)(nil)

func NewMirrorService(gateway ports.SpreadsheetGateway, notifier ports.Notifier, workers int, logger *slog.Logger) *MirrorService {
	if workers <= 0 {
		workers = 4
	}
	s := &MirrorService{
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
		sleep:    time.Sleep,
	}
	s.cond = sync.NewCond(&s.mu)
	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker()
	}
	return s
}

func (s *MirrorService) Enqueue(task *domain.MirrorTask) {
	if task.TaskID == "" {
		task.TaskID = uuid.NewString()
	}
	if task.MaxRetries <= 0 {
		task.MaxRetries = defaultMaxRetries
	}
	s.mu.Lock()
	s.queue = append(s.queue, task)
	s.pending++
	s.mu.Unlock()
	s.cond.Signal()
}

func (s *MirrorService) QueueDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Stop flips the stop flag and waits for in-flight tasks. Queued tasks are
// dropped, not persisted.
func (s *MirrorService) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.cond.Broadcast()
	s.wg.Wait()
}

func (s *MirrorService) worker() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.stopped {
			s.cond.Wait()
		}
		if s.stopped {
			s.mu.Unlock()
			return
		}
		task := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.process(task)
	}
}

func (s *MirrorService) process(task *domain.MirrorTask) {
	logger := s.logger.With(
		slog.String("task_id", task.TaskID),
		slog.String("kind", string(task.Kind)),
		slog.Int("attempt", task.Attempt),
	)

	err := s.apply(context.Background(), task)
	if err == nil {
		s.finish(task, nil)
		return
	}

	if apperrors.IsTransient(err) && task.Attempt+1 < task.MaxRetries {
		task.Attempt++
		backoff := 1 << task.Attempt
		if backoff > maxRetrySleepSeconds {
			backoff = maxRetrySleepSeconds
		}
		logger.Warn("Mirror task failed, retrying",
			slog.String("error", err.Error()),
			slog.Int("backoff_seconds", backoff),
		)
		s.sleep(time.Duration(backoff) * time.Second)

		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			s.finish(task, err)
			return
		}
		s.queue = append(s.queue, task)
		s.mu.Unlock()
		s.cond.Signal()
		return
	}

	logger.Error("Mirror task failed permanently", slog.String("error", err.Error()))
	if apperrors.IsPermanent(err) && s.notifier != nil {
		notifyErr := s.notifier.NotifyLogChat(context.Background(),
			fmt.Sprintf("Mirror failure [%s %s]: %v", task.Kind, task.TaskID, err))
		if notifyErr != nil {
			logger.Warn("Failed to notify log chat", slog.String("error", notifyErr.Error()))
		}
	}
	s.finish(task, err)
}

// finish settles a task: decrement the pending counter and fire the callback.
func (s *MirrorService) finish(task *domain.MirrorTask, err error) {
	s.mu.Lock()
	s.pending--
	s.mu.Unlock()
	if task.Done != nil {
		task.Done(err)
	}
}

func (s *MirrorService) apply(ctx context.Context, task *domain.MirrorTask) error {
	switch task.Kind {
	case domain.TaskAddRecord:
		return s.gateway.InsertRecordSorted(ctx, task.Record)
	case domain.TaskUpdateRecord:
		return s.gateway.UpdateRecordRow(ctx, task.Record, task.ChangedField, task.PrevDate)
	case domain.TaskDeleteRecord:
		return s.gateway.DeleteRecordRow(ctx, task.SpreadsheetID, task.SheetName, task.Record.ID)
	case domain.TaskAddPayment:
		return s.gateway.AppendPaymentRow(ctx, task.SpreadsheetID, task.Payment)
	case domain.TaskUpdatePayment:
		return s.gateway.UpdatePaymentRow(ctx, task.SpreadsheetID, task.Payment)
	case domain.TaskDeletePayment:
		return s.gateway.DeletePaymentRow(ctx, task.SpreadsheetID, task.Payment.Role, task.Payment.ID)
	}
	return fmt.Errorf("%w: unknown task kind %q", apperrors.ErrGatewayPermanent, task.Kind)
}
