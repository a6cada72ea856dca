package dto

import (
	"time"

	"github.com/spec-kit/contact-service/internal/domain"
)

// CreateSubmissionRequest payload for the public contact form.
type CreateSubmissionRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Message        string `json:"message"`
	RecaptchaToken string `json:"recaptcha_token,omitempty"`
}

// SubmissionSummary is the public-facing view returned on creation. It
// deliberately omits audit fields.
type SubmissionSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubmissionAdminView is the full record for admin endpoints, including
// audit fields.
type SubmissionAdminView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Message     string     `json:"message"`
	IPAddress   string     `json:"ip_address"`
	UserAgent   string     `json:"user_agent"`
	IsProcessed bool       `json:"is_processed"`
	ProcessedAt *time.Time `json:"processed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewSubmissionSummary maps a domain submission to its public view.
func NewSubmissionSummary(submission *domain.Submission) SubmissionSummary {
	return SubmissionSummary{
		ID:        submission.ID,
		Name:      submission.Name,
		Email:     submission.Email,
		CreatedAt: submission.CreatedAt,
	}
}

// NewSubmissionAdminView maps a domain submission to its admin view.
func NewSubmissionAdminView(submission *domain.Submission) SubmissionAdminView {
	return SubmissionAdminView{
		ID:          submission.ID,
		Name:        submission.Name,
		Email:       submission.Email,
		Message:     submission.Message,
		IPAddress:   submission.IPAddress,
		UserAgent:   submission.UserAgent,
		IsProcessed: submission.IsProcessed,
		ProcessedAt: submission.ProcessedAt,
		CreatedAt:   submission.CreatedAt,
		UpdatedAt:   submission.UpdatedAt,
	}
}
