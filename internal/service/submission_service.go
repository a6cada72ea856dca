package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/contact-service/internal/captcha"
	"github.com/spec-kit/contact-service/internal/domain"
	"github.com/spec-kit/contact-service/internal/events"
	"github.com/spec-kit/contact-service/internal/mailer"
	"github.com/spec-kit/contact-service/internal/ratelimit"
	"github.com/spec-kit/contact-service/internal/repository"
	"github.com/spec-kit/contact-service/internal/validation"
	apperrors "github.com/spec-kit/contact-service/pkg/util"
)

// SubmissionService coordinates the submission workflow: rate limiting,
// validation, persistence and best-effort notification.
type SubmissionService struct {
	submissions   repository.SubmissionRepository
	limiter       ratelimit.Limiter
	validator     *validation.Validator
	notifier      mailer.Notifier
	captcha       captcha.Verifier
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	notifyTimeout time.Duration
}

// SubmissionDependencies bundles collaborators for the service.
type SubmissionDependencies struct {
	SubmissionRepo repository.SubmissionRepository
	Limiter        ratelimit.Limiter
	Validator      *validation.Validator
	Notifier       mailer.Notifier
	Captcha        captcha.Verifier
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	NotifyTimeout  time.Duration
}

// SubmitInput describes a contact-form submission attempt.
type SubmitInput struct {
	Name         string
	Email        string
	Message      string
	CaptchaToken string
	IPAddress    string
	UserAgent    string
	// Authenticated admins are exempt from the anonymous rate limit.
	Authenticated bool
}

// SubmitResult carries the persisted submission and the notification outcome.
type SubmitResult struct {
	Submission       *domain.Submission
	NotificationSent bool
}

// NewSubmissionService constructs the service.
func NewSubmissionService(deps SubmissionDependencies) *SubmissionService {
	timeout := deps.NotifyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SubmissionService{
		submissions:   deps.SubmissionRepo,
		limiter:       deps.Limiter,
		validator:     deps.Validator,
		notifier:      deps.Notifier,
		captcha:       deps.Captcha,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
		notifyTimeout: timeout,
	}
}

// Submit runs the full flow for a contact-form submission. A notification
// failure never rolls back the persisted record; the outcome is reported as
// a flag on the result.
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if !input.Authenticated {
		allowed, err := s.limiter.Allow(ctx, input.IPAddress)
		if err != nil {
			// rate limiting is a soft dependency; admit and log
			s.logger.Warn("rate limiter unavailable; admitting request", zap.Error(err))
		} else if !allowed {
			return nil, apperrors.NewRateLimited("too many submissions; please try again later")
		}
	}

	if !s.captcha.Verify(ctx, input.CaptchaToken, input.IPAddress) {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{
			"recaptcha": []string{"verification failed"},
		})
	}

	normalized, fieldErrs := s.validator.Validate(validation.Input{
		Name:    input.Name,
		Email:   input.Email,
		Message: input.Message,
	})
	if !fieldErrs.Empty() {
		details := make(map[string]any, len(fieldErrs))
		for field, messages := range fieldErrs {
			details[field] = messages
		}
		return nil, apperrors.NewValidationError("validation failed", details)
	}

	submission := &domain.Submission{
		Name:      normalized.Name,
		Email:     normalized.Email,
		Message:   normalized.Message,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	sent := s.notify(ctx, submission)

	s.publishEvent(ctx, events.Event{
		ID:           uuid.NewString(),
		Type:         events.EventSubmissionReceived,
		SubmissionID: submission.ID,
		Timestamp:    time.Now(),
		Payload: events.SubmissionReceivedPayload{
			Email:            submission.Email,
			Name:             submission.Name,
			IPAddress:        submission.IPAddress,
			NotificationSent: sent,
		},
	})

	return &SubmitResult{Submission: submission, NotificationSent: sent}, nil
}

// notify attempts the outbound email with a bounded timeout so a slow relay
// cannot stall the response.
func (s *SubmissionService) notify(ctx context.Context, submission *domain.Submission) bool {
	notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	return s.notifier.NotifySubmission(notifyCtx, submission) == mailer.ResultSent
}

// List returns all submissions newest-first.
func (s *SubmissionService) List(ctx context.Context, limit, offset int) ([]domain.Submission, error) {
	items, err := s.submissions.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// ListUnprocessed returns pending submissions newest-first.
func (s *SubmissionService) ListUnprocessed(ctx context.Context, limit, offset int) ([]domain.Submission, error) {
	items, err := s.submissions.ListUnprocessed(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Get retrieves a single submission by id.
func (s *SubmissionService) Get(ctx context.Context, id string) (*domain.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return submission, nil
}

// MarkProcessed stamps a submission as handled. Re-invocation re-stamps.
func (s *SubmissionService) MarkProcessed(ctx context.Context, id, adminID string) (*domain.Submission, error) {
	now := time.Now()
	submission, err := s.submissions.MarkProcessed(ctx, id, now)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		ID:           uuid.NewString(),
		Type:         events.EventSubmissionProcessed,
		SubmissionID: submission.ID,
		Timestamp:    now,
		Payload: events.SubmissionProcessedPayload{
			ProcessedBy: adminID,
			ProcessedAt: now,
		},
	})
	return submission, nil
}

func (s *SubmissionService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
