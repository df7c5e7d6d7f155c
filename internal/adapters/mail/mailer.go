// Package mail delivers password reset tokens out-of-band. The token is
// never echoed in an API response.
package mail

import (
	"context"

	"authgate/internal/domain"
	"authgate/internal/logger"
)

// LogMailer writes the reset message to the log instead of sending email.
// Development stand-in for a real provider behind the same port.
type LogMailer struct {
	log logger.Logger
}

func NewLogMailer(log logger.Logger) domain.Mailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, fullName, token string) error {
	m.log.Info("password reset email",
		"to", email,
		"name", fullName,
		"token", token,
	)
	return nil
}
