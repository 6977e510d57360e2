package lifecycle

import (
	"context"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/fieldserve/inspector-api/models"
	templates "github.com/fieldserve/inspector-api/templates/html"
)

// Notifier is the outbound notification collaborator. Implementations are
// best-effort: the orchestrator treats failures as warnings, never as operation
// failures.
type Notifier interface {
	SendMobilizationNotification(ctx context.Context, email, name, project, customer string, mobDate time.Time) error
	SendDemobilizationNotification(ctx context.Context, email, name string, reason models.DemobilizationReason, date time.Time) error
	SendComplianceReminder(ctx context.Context, email, name string, dueDate time.Time) error
}

// SendgridNotifier sends lifecycle email through SendGrid.
type SendgridNotifier struct {
	apiKey    string
	fromName  string
	fromEmail string
}

// NewSendgridNotifier builds a notifier with the given sender identity.
func NewSendgridNotifier(apiKey, fromName, fromEmail string) *SendgridNotifier {
	if fromName == "" {
		fromName = "FieldServe Dispatch"
	}
	if fromEmail == "" {
		fromEmail = "no-reply@fieldserve.io"
	}
	return &SendgridNotifier{apiKey: apiKey, fromName: fromName, fromEmail: fromEmail}
}

// SendMobilizationNotification emails the inspector their mobilization details.
func (n *SendgridNotifier) SendMobilizationNotification(ctx context.Context, email, name, project, customer string, mobDate time.Time) error {
	subject := "You have been mobilized: " + project
	plain, html := templates.RenderMobilizationEmail(name, project, customer, mobDate)
	return n.send(ctx, email, subject, plain, html)
}

// SendDemobilizationNotification emails the inspector their demobilization notice.
func (n *SendgridNotifier) SendDemobilizationNotification(ctx context.Context, email, name string, reason models.DemobilizationReason, date time.Time) error {
	subject := "Your mobilization has ended"
	plain, html := templates.RenderDemobilizationEmail(name, string(reason), date)
	return n.send(ctx, email, subject, plain, html)
}

// SendComplianceReminder emails the inspector about an upcoming or overdue
// drug test.
func (n *SendgridNotifier) SendComplianceReminder(ctx context.Context, email, name string, dueDate time.Time) error {
	subject := "Drug test due " + dueDate.Format("January 2, 2006")
	plain, html := templates.RenderComplianceReminderEmail(name, dueDate)
	return n.send(ctx, email, subject, plain, html)
}

func (n *SendgridNotifier) send(ctx context.Context, email, subject, plain, html string) error {
	if n.apiKey == "" {
		zap.S().Warnw("SENDGRID_API_KEY not set, skipping email", "subject", subject)
		return nil
	}

	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail("", email)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	client := sendgrid.NewSendClient(n.apiKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return models.NewTransientFault("sendgrid send failed: %v", err)
	}
	if resp.StatusCode >= 400 {
		return models.NewTransientFault("sendgrid rejected message with status %d", resp.StatusCode)
	}
	zap.S().Infow("notification sent", "subject", subject, "status", resp.StatusCode)
	return nil
}
