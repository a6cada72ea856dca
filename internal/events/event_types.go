package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSubmissionReceived  EventType = "submission_received"
	EventSubmissionProcessed EventType = "submission_processed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	SubmissionID string      `json:"submission_id"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// SubmissionReceivedPayload payload.
type SubmissionReceivedPayload struct {
	Email            string `json:"email"`
	Name             string `json:"name"`
	IPAddress        string `json:"ip_address,omitempty"`
	NotificationSent bool   `json:"notification_sent"`
}

// SubmissionProcessedPayload payload.
type SubmissionProcessedPayload struct {
	ProcessedBy string    `json:"processed_by"`
	ProcessedAt time.Time `json:"processed_at"`
}
