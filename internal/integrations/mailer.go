package integrations

import (
	"context"
	"errors"

	"salesorch_backend/internal/integrations/gmail"
	"salesorch_backend/internal/integrations/repository"
	outreachservice "salesorch_backend/internal/outreach/service"

	"github.com/google/uuid"
)

// Mailer adapts the Gmail client to the outreach send flow. A missing
// integration row maps to the sentinel the send flow downgrades to the
// dashboard-only disposition.
type Mailer struct {
	gmail *gmail.Client
}

func NewMailer(gmailClient *gmail.Client) *Mailer {
	return &Mailer{gmail: gmailClient}
}

func (m *Mailer) SendLeadEmail(ctx context.Context, orgID uuid.UUID, to, subject, body string) (string, error) {
	id, err := m.gmail.SendMessage(ctx, orgID, to, subject, body)
	if errors.Is(err, repository.ErrNotFound) {
		return "", outreachservice.ErrNoMailIntegration
	}
	return id, err
}

var _ outreachservice.MailSender = (*Mailer)(nil)
