package email

import (
	"context"
	"errors"
)

// Sender define la interfaz para envio de correos de bienvenida.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail string, fullName string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendWelcome(_ context.Context, _ string, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
