package mail

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Mailer delivers transactional mail. Delivery is an external collaborator;
// the back office only depends on this interface.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

// LogMailer logs mail instead of sending it. Used in development and tests.
type LogMailer struct{}

// SendPasswordReset logs the reset notification.
func (LogMailer) SendPasswordReset(_ context.Context, to, _ string) error {
	log.Infof("mail: password reset requested for %s", to)
	return nil
}
