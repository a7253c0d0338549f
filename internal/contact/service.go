package contact

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/events"
	"github.com/Sanalemba991/digiallink-sa/internal/metrics"
	"github.com/Sanalemba991/digiallink-sa/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrMissingFields       = errors.New("all fields are required")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrDuplicateSubmission = errors.New("similar message submitted recently")
	ErrMissingIDOrStatus   = errors.New("message id and status are required")
	ErrInvalidStatus       = errors.New("invalid status value")
	ErrNotFound            = errors.New("message not found")
)

// DuplicateWindow is how long an (email, subject) pair blocks resubmission.
const DuplicateWindow = 60 * time.Minute

type Service struct {
	repo     Repository
	producer events.Producer
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, producer events.Producer, m *metrics.Metrics, logger *slog.Logger, opts ...Option) *Service {
	if producer == nil {
		producer = events.Nop{}
	}
	s := &Service{
		repo:     repo,
		producer: producer,
		validate: validation.New(),
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Contact, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if err := s.validate.Struct(&req); err != nil {
		if validation.HasTag(err, "required") {
			return nil, ErrMissingFields
		}
		if validation.HasTag(err, "emailshape") {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}

	now := s.now().UTC()
	contact := &Contact{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Subject:       req.Subject,
		Message:       req.Message,
		Status:        StatusNew,
		SubmittedDate: now,
	}

	if err := s.repo.Create(ctx, contact, now.Add(-DuplicateWindow)); err != nil {
		if errors.Is(err, ErrDuplicateSubmission) {
			s.metrics.RecordDuplicate(ctx, "contact")
		}
		return nil, err
	}

	s.metrics.RecordContactSubmitted(ctx)
	s.logger.InfoContext(ctx, "contact message saved", "id", contact.ID, "email", contact.Email, "subject", contact.Subject)

	s.publish(ctx, contact)
	return contact, nil
}

func (s *Service) List(ctx context.Context) ([]Contact, error) {
	return s.repo.List(ctx)
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Contact, error) {
	id = strings.TrimSpace(id)
	if id == "" || status == "" {
		return nil, ErrMissingIDOrStatus
	}

	st := Status(status)
	if !st.Valid() {
		return nil, ErrInvalidStatus
	}

	// Ids are UUIDs; anything else cannot name a stored message.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	if err := s.repo.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}

	s.metrics.RecordStatusUpdate(ctx, "contact", status)
	return &Contact{ID: id, Status: st}, nil
}

// publish is best effort: the message is already stored.
func (s *Service) publish(ctx context.Context, contact *Contact) {
	event := events.ContactSubmitted{
		ID:          contact.ID,
		Name:        contact.Name,
		Email:       contact.Email,
		Subject:     contact.Subject,
		SubmittedAt: contact.SubmittedDate,
	}
	if err := s.producer.SendMessage(ctx, contact.ID, event); err != nil {
		s.metrics.RecordEventFailed(ctx, "contact")
		s.logger.WarnContext(ctx, "failed to publish contact event", "id", contact.ID, "error", err)
	}
}
