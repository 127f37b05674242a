// Package notify carries new-submission events to best-effort side channels.
// Every sink is attempted exactly once; there is no retry, dead-lettering or
// delivery confirmation. Losing a notification is acceptable, losing a
// submission is not, so callers persist first and drop sink errors after
// logging them.
package notify

import (
	"context"
	"errors"
	"time"
)

// Event describes a newly stored submission.
type Event struct {
	SubmissionID string    `json:"submission_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Message      string    `json:"message"`
	ReceivedAt   time.Time `json:"received_at"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
	Close() error
}

// Multi fans an event out to several sinks. Each sink is attempted even when
// an earlier one fails; the failures are joined into a single error.
type Multi struct {
	sinks []Notifier
}

func NewMulti(sinks ...Notifier) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
