package mail

import (
	"context"
	"fmt"
	"io"

	"thoughtforest/internal/config"

	"gopkg.in/gomail.v2"
)

// SMTPMailer delivers messages through an SMTP relay.
type SMTPMailer struct {
	send func(m ...*gomail.Message) error
	from string
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPMailer{
		send: dialer.DialAndSend,
		from: cfg.From,
	}
}

// Send returns when the relay has accepted the message or ctx is done,
// whichever comes first. A relay that stalls past ctx is abandoned.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := m.compose(msg)
	done := make(chan error, 1)
	go func() {
		done <- m.send(gm)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: failed to send %s mail: %w", msg.Kind, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp: gave up on %s mail: %w", msg.Kind, ctx.Err())
	}
}

func (m *SMTPMailer) compose(msg Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)

	contentType := "text/plain"
	if msg.HTML {
		contentType = "text/html"
	}
	gm.SetBody(contentType, msg.Body)

	for _, a := range msg.Attachments {
		data := a.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}))
		}
		gm.Attach(a.Filename, settings...)
	}
	return gm
}
