// Package sequence issues the per-owner document numbers. Numbers must come
// out gap-free for issued documents, so the counter is only advanced after
// the document carrying the number has been durably written
// (allocate -> write -> confirm, never counter first).
package sequence

import (
	"errors"
	"fmt"
)

// ErrConflict is returned when a candidate number already belongs to an
// existing document, or when a concurrent submission confirmed the same
// number first. Callers must discard the candidate and re-run AllocateNext;
// a previously returned candidate is never reusable after a failure.
var ErrConflict = errors.New("document number already exists")

// CounterStore persists the last issued number per owner.
type CounterStore interface {
	// LastIssued returns 0 when the owner has no counter record yet.
	LastIssued(ownerID string) (int64, error)
	// CompareAndSet advances the counter to next only if it still holds
	// expected, creating the record when expected is 0. A lost race reports
	// ErrConflict.
	CompareAndSet(ownerID string, expected, next int64) error
}

// DocumentIndex answers whether an issued document already carries a number.
// It is the ground truth the counter record is checked against.
type DocumentIndex interface {
	NumberExists(ownerID string, number int64) (bool, error)
}

// Allocator hands out candidate numbers and confirms them once used.
type Allocator struct {
	counters CounterStore
	docs     DocumentIndex
}

func NewAllocator(counters CounterStore, docs DocumentIndex) *Allocator {
	return &Allocator{counters: counters, docs: docs}
}

// AllocateNext returns the next candidate number for the owner. Nothing is
// persisted yet. A candidate that collides with an existing document means
// the counter record went stale; the collision is surfaced as ErrConflict
// instead of silently skipping ahead, so the inconsistency stays visible.
func (a *Allocator) AllocateNext(ownerID string) (int64, error) {
	last, err := a.counters.LastIssued(ownerID)
	if err != nil {
		return 0, fmt.Errorf("read counter for %s: %w", ownerID, err)
	}
	candidate := last + 1

	taken, err := a.docs.NumberExists(ownerID, candidate)
	if err != nil {
		return 0, fmt.Errorf("check number %d for %s: %w", candidate, ownerID, err)
	}
	if taken {
		return 0, fmt.Errorf("number %d: %w", candidate, ErrConflict)
	}
	return candidate, nil
}

// Confirm records issued as the owner's last issued number. Call it only
// after the document write succeeded. The compare-and-swap (expected old
// value = issued-1) makes the race between two submissions that observed the
// same counter exact: the second Confirm fails with ErrConflict and the
// caller must re-allocate.
func (a *Allocator) Confirm(ownerID string, issued int64) error {
	if issued < 1 {
		return fmt.Errorf("confirm %d for %s: number must be positive", issued, ownerID)
	}
	if err := a.counters.CompareAndSet(ownerID, issued-1, issued); err != nil {
		return fmt.Errorf("confirm %d for %s: %w", issued, ownerID, err)
	}
	return nil
}
