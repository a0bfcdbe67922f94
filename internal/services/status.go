package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finanzas/internal/core"
)

// StatusBackend is the slice of the upstream client the status service
// needs: the two PATCH acknowledgement calls.
type StatusBackend interface {
	UpdateDueDateStatus(ctx context.Context, id string, status core.Status) error
	UpdateTransactionStatus(ctx context.Context, id string, status core.Status, localDate core.Date) error
}

// StatusService applies status changes optimistically: the local list
// reflects the new status before the backend confirms it, and a failed
// confirmation restores the full pre-update snapshot. The visible list is
// therefore always either fully pre-update or fully post-update.
//
// Each record carries a sequence token so a late failure from an older
// update cannot roll back state a newer update already replaced.
type StatusService struct {
	backend      StatusBackend
	refetch      func(context.Context)
	refetchDelay time.Duration

	mu           sync.Mutex
	dueDates     []core.DueItem
	transactions []core.Transaction
	seq          map[string]uint64

	now       func() time.Time
	done      chan struct{}
	closeOnce sync.Once
}

// NewStatusService creates a status service over the given backend.
// refetch, when non-nil, is scheduled refetchDelay after every confirmed
// update so server-side derived fields can propagate back.
func NewStatusService(backend StatusBackend, refetchDelay time.Duration, refetch func(context.Context)) *StatusService {
	return &StatusService{
		backend:      backend,
		refetch:      refetch,
		refetchDelay: refetchDelay,
		seq:          make(map[string]uint64),
		now:          time.Now,
		done:         make(chan struct{}),
	}
}

// ReplaceDueDates swaps in a freshly fetched due-date list.
func (s *StatusService) ReplaceDueDates(items []core.DueItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dueDates = cloneDueDates(items)
}

// ReplaceTransactions swaps in a freshly fetched transaction list.
func (s *StatusService) ReplaceTransactions(txs []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = cloneTransactions(txs)
}

// DueDates returns a copy of the current due-date list.
func (s *StatusService) DueDates() []core.DueItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDueDates(s.dueDates)
}

// Transactions returns a copy of the current transaction list.
func (s *StatusService) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTransactions(s.transactions)
}

// SetDueDateStatus optimistically moves a due item to the given status
// and confirms the change with the backend. Any status is reachable from
// any other; manual correction is always possible.
func (s *StatusService) SetDueDateStatus(ctx context.Context, id string, status core.Status) error {
	if id == "" {
		return fmt.Errorf("set due date status: %w", core.ErrEmptyID)
	}
	if !status.Valid() {
		return fmt.Errorf("set due date status %q: %w", status, core.ErrInvalidStatus)
	}

	s.mu.Lock()
	snapshot := cloneDueDates(s.dueDates)
	applied := false
	for i := range s.dueDates {
		if s.dueDates[i].ID == id {
			s.dueDates[i].Status = status
			applied = true
			break
		}
	}
	if !applied {
		s.mu.Unlock()
		return fmt.Errorf("set due date status %s: %w", id, core.ErrRecordNotFound)
	}
	s.seq[id]++
	token := s.seq[id]
	s.mu.Unlock()

	if err := s.backend.UpdateDueDateStatus(ctx, id, status); err != nil {
		s.rollbackDueDates(ctx, id, token, snapshot)
		return fmt.Errorf("confirm due date status: %w", err)
	}

	s.scheduleRefetch()
	return nil
}

// SetTransactionStatus optimistically moves a transaction to the given
// payment status. The caller's local calendar date travels with the
// confirmation so server-side audit logs are not skewed by timezone.
func (s *StatusService) SetTransactionStatus(ctx context.Context, id string, status core.Status) error {
	if id == "" {
		return fmt.Errorf("set transaction status: %w", core.ErrEmptyID)
	}
	if !status.Valid() {
		return fmt.Errorf("set transaction status %q: %w", status, core.ErrInvalidStatus)
	}

	s.mu.Lock()
	snapshot := cloneTransactions(s.transactions)
	applied := false
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i].PaymentStatus = status
			applied = true
			break
		}
	}
	if !applied {
		s.mu.Unlock()
		return fmt.Errorf("set transaction status %s: %w", id, core.ErrRecordNotFound)
	}
	s.seq[id]++
	token := s.seq[id]
	s.mu.Unlock()

	n := s.now()
	localDate := core.NewDate(n.Year(), int(n.Month()), n.Day())
	if err := s.backend.UpdateTransactionStatus(ctx, id, status, localDate); err != nil {
		s.rollbackTransactions(ctx, id, token, snapshot)
		return fmt.Errorf("confirm transaction status: %w", err)
	}

	s.scheduleRefetch()
	return nil
}

// rollbackDueDates restores the full pre-update snapshot, unless a newer
// mutation of the same record has already superseded this one.
func (s *StatusService) rollbackDueDates(ctx context.Context, id string, token uint64, snapshot []core.DueItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq[id] != token {
		slog.WarnContext(ctx, "Skipping stale rollback", "id", id, "token", token, "current", s.seq[id])
		return
	}
	s.dueDates = snapshot
}

func (s *StatusService) rollbackTransactions(ctx context.Context, id string, token uint64, snapshot []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq[id] != token {
		slog.WarnContext(ctx, "Skipping stale rollback", "id", id, "token", token, "current", s.seq[id])
		return
	}
	s.transactions = snapshot
}

// scheduleRefetch runs the configured refetch once after the delay. The
// callback is discarded when the service has been closed, so a confirmed
// update cannot mutate state after teardown.
func (s *StatusService) scheduleRefetch() {
	if s.refetch == nil {
		return
	}
	time.AfterFunc(s.refetchDelay, func() {
		select {
		case <-s.done:
			return
		default:
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.refetch(ctx)
	})
}

// Close stops the service. Pending refetch callbacks become no-ops.
func (s *StatusService) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func cloneDueDates(items []core.DueItem) []core.DueItem {
	if items == nil {
		return nil
	}
	out := make([]core.DueItem, len(items))
	copy(out, items)
	return out
}

func cloneTransactions(txs []core.Transaction) []core.Transaction {
	if txs == nil {
		return nil
	}
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	return out
}
