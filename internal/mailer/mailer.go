package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/spec-kit/contact-service/internal/config"
	"github.com/spec-kit/contact-service/internal/domain"
)

// Result reports the outcome of a notification attempt.
type Result int

const (
	// ResultSent means the message was accepted by the relay.
	ResultSent Result = iota
	// ResultSkipped means notification is unconfigured; not an error.
	ResultSkipped
	// ResultFailed means the attempt failed; never fatal for the caller.
	ResultFailed
)

// Notifier dispatches a best-effort email about a new submission.
type Notifier interface {
	NotifySubmission(ctx context.Context, submission *domain.Submission) Result
}

// SMTPNotifier sends admin notifications over SMTP.
type SMTPNotifier struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewSMTPNotifier builds a notifier from config.
func NewSMTPNotifier(cfg config.NotificationConfig, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, logger: logger}
}

// NotifySubmission composes and sends the notification email. Missing
// recipient or sender configuration skips silently; any transport failure is
// absorbed into the returned Result.
func (n *SMTPNotifier) NotifySubmission(ctx context.Context, submission *domain.Submission) Result {
	if n.cfg.Recipient == "" || n.cfg.From == "" {
		n.logger.Info("notification skipped: recipient or sender not configured")
		return ResultSkipped
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		n.logger.Error("invalid notification sender", zap.Error(err))
		return ResultFailed
	}
	if err := msg.To(n.cfg.Recipient); err != nil {
		n.logger.Error("invalid notification recipient", zap.Error(err))
		return ResultFailed
	}
	msg.Subject(fmt.Sprintf("New Contact Form Submission from %s", submission.Name))
	msg.SetBodyString(mail.TypeTextPlain, composeBody(submission))

	opts := []mail.Option{
		mail.WithPort(n.cfg.SMTPPort),
		mail.WithTimeout(n.cfg.Timeout()),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if n.cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.SMTPUsername),
			mail.WithPassword(n.cfg.SMTPPassword))
	}

	client, err := mail.NewClient(n.cfg.SMTPHost, opts...)
	if err != nil {
		n.logger.Error("notification client setup failed", zap.Error(err))
		return ResultFailed
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		n.logger.Error("notification send failed",
			zap.String("submission_id", submission.ID),
			zap.Error(err))
		return ResultFailed
	}

	n.logger.Info("notification sent", zap.String("submission_id", submission.ID))
	return ResultSent
}

func composeBody(submission *domain.Submission) string {
	return fmt.Sprintf(`New contact form submission received:

Name: %s
Email: %s
Message:
%s

---
Submission ID: %s
`, submission.Name, submission.Email, submission.Message, submission.ID)
}
