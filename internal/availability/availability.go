// Package availability decides whether a worker can take a time slot without
// colliding with commitments already on their schedule.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const DefaultBuffer = 30 * time.Minute

var ErrInvalidInterval = errors.New("interval must end after it starts")

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Dilate widens the interval by d on both sides.
func (i Interval) Dilate(d time.Duration) Interval {
	return Interval{Start: i.Start.Add(-d), End: i.End.Add(d)}
}

// Overlaps reports whether two intervals collide once buffer is applied to both.
func Overlaps(existing, candidate Interval, buffer time.Duration) bool {
	return existing.Start.Before(candidate.End.Add(buffer)) &&
		existing.End.Add(buffer).After(candidate.Start)
}

// Commitment is an active booking that holds part of a worker schedule.
type Commitment struct {
	BookingID string
	Interval
}

// Ledger lists the active commitments of a worker that may touch window.
type Ledger interface {
	ActiveCommitments(ctx context.Context, workerID string, window Interval) ([]Commitment, error)
}

type Engine struct {
	ledger Ledger
	buffer time.Duration
}

func New(ledger Ledger, buffer time.Duration) *Engine {
	if buffer < 0 {
		buffer = 0
	}

	return &Engine{ledger: ledger, buffer: buffer}
}

func (e *Engine) Buffer() time.Duration {
	return e.buffer
}

// IsAvailable reports whether the worker has no active commitment conflicting with
// [start, end).
func (e *Engine) IsAvailable(ctx context.Context, workerID string, start, end time.Time) (bool, error) {
	return e.IsAvailableFor(ctx, workerID, "", start, end)
}

// IsAvailableFor is IsAvailable ignoring the commitment of excludeBookingID, so a
// booking never conflicts with itself on reassignment.
func (e *Engine) IsAvailableFor(ctx context.Context, workerID, excludeBookingID string, start, end time.Time) (bool, error) {
	conflicts, err := e.Conflicts(ctx, workerID, excludeBookingID, Interval{Start: start, End: end})
	if err != nil {
		return false, err
	}

	return len(conflicts) == 0, nil
}

// Conflicts returns every commitment of the worker that collides with candidate.
func (e *Engine) Conflicts(ctx context.Context, workerID, excludeBookingID string, candidate Interval) ([]Commitment, error) {
	if !candidate.Valid() {
		return nil, ErrInvalidInterval
	}

	commitments, err := e.ledger.ActiveCommitments(ctx, workerID, candidate.Dilate(e.buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to load commitments of worker %s: %w", workerID, err)
	}

	var conflicts []Commitment

	for _, commitment := range commitments {
		if excludeBookingID != "" && commitment.BookingID == excludeBookingID {
			continue
		}

		if Overlaps(commitment.Interval, candidate, e.buffer) {
			conflicts = append(conflicts, commitment)
		}
	}

	return conflicts, nil
}
