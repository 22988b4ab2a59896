package service

import (
	"context"
	"errors"
	"fmt"

	"uarchive/internal/metrics"
	"uarchive/internal/repository"
)

// VoteLedger adjusts the vote counter of one kind of votable record. Each adjustment
// is a single store-level increment, so concurrent votes are never lost. Deltas and
// totals may be negative; a delta that would overflow the 64-bit total is rejected
// and leaves the counter unchanged.
type VoteLedger[T any] struct {
	target string
	store  repository.VoteStore[T]
}

func NewVoteLedger[T any](target string, store repository.VoteStore[T]) *VoteLedger[T] {
	return &VoteLedger[T]{target: target, store: store}
}

// Adjust adds delta to the counter of targetID and returns the record after the update.
func (l *VoteLedger[T]) Adjust(ctx context.Context, targetID string, delta int64) (*T, error) {
	record, err := l.store.AdjustVotes(ctx, targetID, delta)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s %w", l.target, ErrTargetNotFound)
		}
		if errors.Is(err, repository.ErrOutOfRange) {
			return nil, fmt.Errorf("%w: %s vote total out of range", ErrInvalidInput, l.target)
		}
		return nil, fmt.Errorf("adjust %s votes: %w", l.target, err)
	}
	metrics.VotesTotal.WithLabelValues(l.target).Inc()
	return record, nil
}
