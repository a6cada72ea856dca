package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/contact-service/internal/events"
)

// StartSubmissionWorker subscribes audit-log handlers for submission events.
func StartSubmissionWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	dispatcher.Subscribe(events.EventSubmissionReceived, func(_ context.Context, event events.Event) error {
		logger.Info("SubmissionReceived",
			zap.String("submission_id", event.SubmissionID),
			zap.Any("payload", event.Payload))
		return nil
	})

	dispatcher.Subscribe(events.EventSubmissionProcessed, func(_ context.Context, event events.Event) error {
		logger.Info("SubmissionProcessed",
			zap.String("submission_id", event.SubmissionID),
			zap.Any("payload", event.Payload))
		return nil
	})
}
