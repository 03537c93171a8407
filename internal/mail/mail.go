package mail

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Attachment is a file attached to a message.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Message is an outgoing email. Kind labels it for logs and metrics.
type Message struct {
	Kind        string       `json:"kind"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	HTML        bool         `json:"html,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Observer is told about every delivery attempt.
type Observer interface {
	ObserveMail(kind string, err error)
}

// LogMailer writes messages to the log instead of delivering them. It is
// used when no SMTP host is configured.
type LogMailer struct{}

func NewLogMailer() *LogMailer { return &LogMailer{} }

func (LogMailer) Send(_ context.Context, msg Message) error {
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	log.Info().
		Str("kind", msg.Kind).
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Strs("attachments", names).
		Msg("mail not delivered, no smtp host configured")
	return nil
}

// Async sends through next on a background goroutine so callers never wait
// on delivery. Failures are logged and otherwise dropped.
type Async struct {
	next     Mailer
	timeout  time.Duration
	observer Observer
	wg       sync.WaitGroup
}

// NewAsync creates a new Async mailer. Each delivery gets its own timeout.
func NewAsync(next Mailer, timeout time.Duration) *Async {
	return &Async{next: next, timeout: timeout}
}

// WithObserver attaches a metrics observer.
func (a *Async) WithObserver(o Observer) *Async {
	a.observer = o
	return a
}

// Send always returns nil.
func (a *Async) Send(_ context.Context, msg Message) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		// detached from the request context, which ends with the response
		ctx := context.Background()
		if a.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.timeout)
			defer cancel()
		}

		err := a.next.Send(ctx, msg)
		if a.observer != nil {
			a.observer.ObserveMail(msg.Kind, err)
		}
		if err != nil {
			log.Error().Err(err).Str("kind", msg.Kind).Strs("to", msg.To).Msg("failed to send mail")
		}
	}()
	return nil
}

// Wait blocks until all pending deliveries have finished.
func (a *Async) Wait() {
	a.wg.Wait()
}
