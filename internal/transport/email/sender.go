package email

import (
	"context"

	"crm-gateway/internal/config"
	"crm-gateway/internal/models"
	"crm-gateway/internal/transport"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Sender delivers email over SMTP.
type Sender struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
}

func NewSender(cfg config.EmailConfig) *Sender {
	return &Sender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

func (s *Sender) Channel() string {
	return models.ChannelEmail
}

// Send builds and delivers one message. SMTP assigns no message id of its
// own, so one is generated locally for the send report.
func (s *Sender) Send(ctx context.Context, to string, content transport.Content) (transport.Result, error) {
	subject := content.Subject
	if subject == "" {
		subject = "(no subject)"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content.Body)
	if content.MediaURL != "" {
		m.SetBody("text/html", content.Body+`<br><img src="`+content.MediaURL+`">`)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return transport.Result{}, transport.NewError(s.Channel(), "smtp: %v", err)
	}

	return transport.Result{MessageID: uuid.NewString()}, nil
}
