package domain

import "time"

// Submission is the aggregate for contact-form entries.
type Submission struct {
	ID          string
	Name        string
	Email       string
	Message     string
	IPAddress   string
	UserAgent   string
	IsProcessed bool
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
