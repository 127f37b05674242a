package submission

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"contact-service/internal/metrics"
	"contact-service/internal/notify"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidStatus      = errors.New("invalid status")
)

// emailPattern is the shared shape check: local@domain.tld, no whitespace.
// The gateway client applies the same pattern; the server re-checks because
// the client is untrusted.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RequestMeta is best-effort request metadata stamped onto a submission.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type Service interface {
	Submit(ctx context.Context, name, email, message string, meta RequestMeta) (*Submission, error)
	ListSubmissions(ctx context.Context) ([]Submission, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Submission, error)
	DeleteSubmission(ctx context.Context, id string) error
	ProbeStore(ctx context.Context) error
}

type service struct {
	repo     Repository
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService builds the intake/triage service. notifier may be nil when no
// notification sink is configured.
func NewService(repo Repository, notifier notify.Notifier, m *metrics.Metrics, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// Submit validates and normalizes the payload, persists it with status "new"
// and fires a best-effort notification. Persistence is the source of truth:
// a notification failure never fails the submission.
func (s *service) Submit(ctx context.Context, name, email, message string, meta RequestMeta) (*Submission, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	message = strings.TrimSpace(message)

	if name == "" || email == "" || message == "" {
		return nil, ErrMissingFields
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	sub := &Submission{
		Name:      name,
		Email:     email,
		Message:   message,
		Status:    StatusNew,
		IPAddress: orUnknown(meta.IPAddress),
		UserAgent: orUnknown(meta.UserAgent),
	}

	created, err := s.repo.Insert(ctx, sub)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		event := notify.Event{
			SubmissionID: created.ID,
			Name:         created.Name,
			Email:        created.Email,
			Message:      created.Message,
			ReceivedAt:   created.CreatedAt,
		}
		// Fire and forget: the submission is already durably stored, so the
		// dispatch error is logged and deliberately dropped here.
		if err := s.notifier.Notify(ctx, event); err != nil {
			s.metrics.RecordNotificationFailed(ctx)
			s.logger.ErrorContext(ctx, "notification dispatch failed",
				"submission_id", created.ID, "error", err)
		} else {
			s.metrics.RecordNotificationSent(ctx)
		}
	}

	return created, nil
}

func (s *service) ListSubmissions(ctx context.Context) ([]Submission, error) {
	return s.repo.List(ctx)
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (*Submission, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrSubmissionNotFound
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *service) DeleteSubmission(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrSubmissionNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) ProbeStore(ctx context.Context) error {
	return s.repo.Probe(ctx)
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
