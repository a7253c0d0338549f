package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/events"
	"github.com/Sanalemba991/digiallink-sa/internal/metrics"
	"github.com/Sanalemba991/digiallink-sa/internal/resume"
	"github.com/Sanalemba991/digiallink-sa/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrMissingFields        = errors.New("all fields are required")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrDuplicateApplication = errors.New("already applied for this position")
	ErrInvalidResumeType    = errors.New("resume must be a pdf")
	ErrResumeTooLarge       = errors.New("resume exceeds size limit")
	ErrMissingIDOrStatus    = errors.New("application id and status are required")
	ErrInvalidStatus        = errors.New("invalid status value")
	ErrNotFound             = errors.New("application not found")
	ErrResumeNotFound       = errors.New("resume not found")
	ErrInvalidResumeFormat  = errors.New("invalid resume format")
)

const (
	MaxResumeSize     = 2 * 1024 * 1024
	ResumeContentType = "application/pdf"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

type Service struct {
	repo     Repository
	store    resume.Store
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

func NewService(repo Repository, store resume.Store, producer events.Producer, m *metrics.Metrics, logger *slog.Logger, opts ...Option) *Service {
	if store == nil {
		store = resume.NewInlineStore()
	}
	if producer == nil {
		producer = events.Nop{}
	}
	s := &Service{
		repo:     repo,
		store:    store,
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

// Submit stores a new application. upload may be nil or empty.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, upload *ResumeUpload) (*JobApplication, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.CoverLetter = strings.TrimSpace(req.CoverLetter)
	req.JobTitle = strings.TrimSpace(req.JobTitle)
	req.JobSlug = strings.TrimSpace(req.JobSlug)

	if err := s.validate.Struct(&req); err != nil {
		if validation.HasTag(err, "required") {
			return nil, ErrMissingFields
		}
		if validation.HasTag(err, "emailshape") {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, req.Email, req.JobSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing application: %w", err)
	}
	if exists {
		s.metrics.RecordDuplicate(ctx, "application")
		return nil, ErrDuplicateApplication
	}

	now := s.now().UTC()
	app := &JobApplication{
		ID:          uuid.NewString(),
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		CoverLetter: req.CoverLetter,
		JobTitle:    req.JobTitle,
		JobSlug:     req.JobSlug,
		Status:      StatusPending,
		AppliedDate: now,
	}

	hasResume := upload != nil && upload.Size > 0
	if hasResume {
		if upload.ContentType != ResumeContentType {
			s.logger.InfoContext(ctx, "invalid resume type", "content_type", upload.ContentType)
			return nil, ErrInvalidResumeType
		}
		if upload.Size > MaxResumeSize {
			s.logger.InfoContext(ctx, "resume too large", "size", upload.Size)
			return nil, ErrResumeTooLarge
		}

		app.ResumeFilename = ResumeFilename(req.FullName, req.JobSlug, upload.Filename, now)
		locator, err := s.store.Put(ctx, app.ResumeFilename, upload.ContentType, upload.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to store resume: %w", err)
		}
		app.ResumePath = locator

		s.logger.InfoContext(ctx, "resume processed", "filename", app.ResumeFilename, "size", upload.Size)
	}

	if err := s.repo.Create(ctx, app); err != nil {
		if errors.Is(err, ErrDuplicateApplication) {
			s.metrics.RecordDuplicate(ctx, "application")
		}
		return nil, err
	}

	s.metrics.RecordApplicationSubmitted(ctx, hasResume)
	s.logger.InfoContext(ctx, "job application saved", "id", app.ID, "email", app.Email, "job_slug", app.JobSlug)

	s.publish(ctx, app, hasResume)
	return app, nil
}

func (s *Service) List(ctx context.Context) ([]JobApplication, error) {
	return s.repo.List(ctx)
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*JobApplication, error) {
	id = strings.TrimSpace(id)
	if id == "" || status == "" {
		return nil, ErrMissingIDOrStatus
	}

	st := Status(status)
	if !st.Valid() {
		return nil, ErrInvalidStatus
	}

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	if err := s.repo.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}

	s.metrics.RecordStatusUpdate(ctx, "application", status)
	return &JobApplication{ID: id, Status: st}, nil
}

// RetrieveResume returns the stored bytes of the resume saved under filename.
func (s *Service) RetrieveResume(ctx context.Context, filename string) (*Resume, error) {
	if filename == "" {
		return nil, ErrResumeNotFound
	}

	app, err := s.repo.GetByResumeFilename(ctx, filename)
	if err != nil {
		return nil, err
	}
	if app.ResumePath == "" {
		return nil, ErrResumeNotFound
	}

	contentType, data, err := s.store.Get(ctx, app.ResumePath)
	if err != nil {
		switch {
		case errors.Is(err, resume.ErrInvalidFormat):
			return nil, ErrInvalidResumeFormat
		case errors.Is(err, resume.ErrNotFound):
			return nil, ErrResumeNotFound
		}
		return nil, err
	}

	s.metrics.RecordResumeDownloaded(ctx)
	return &Resume{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// ResumeFilename derives the stored name:
// <fullName>-<jobSlug>-<unix millis>.<extension of the uploaded name>,
// with every non-alphanumeric character of the name and slug replaced by "-".
func ResumeFilename(fullName, jobSlug, original string, at time.Time) string {
	ext := original
	if i := strings.LastIndex(original, "."); i >= 0 {
		ext = original[i+1:]
	}
	return fmt.Sprintf("%s-%s-%d.%s",
		unsafeFilenameChars.ReplaceAllString(fullName, "-"),
		unsafeFilenameChars.ReplaceAllString(jobSlug, "-"),
		at.UnixMilli(),
		ext,
	)
}

func (s *Service) publish(ctx context.Context, app *JobApplication, hasResume bool) {
	event := events.ApplicationSubmitted{
		ID:        app.ID,
		FullName:  app.FullName,
		Email:     app.Email,
		JobTitle:  app.JobTitle,
		JobSlug:   app.JobSlug,
		HasResume: hasResume,
		AppliedAt: app.AppliedDate,
	}
	if err := s.producer.SendMessage(ctx, app.ID, event); err != nil {
		s.metrics.RecordEventFailed(ctx, "application")
		s.logger.WarnContext(ctx, "failed to publish application event", "id", app.ID, "error", err)
	}
}
