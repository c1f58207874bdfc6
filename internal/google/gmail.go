package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/emersion/go-message/mail"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Mailer sends plain text mail through the Gmail API as the authenticated user.
type Mailer struct {
	service *gmail.Service
	logger  *slog.Logger
}

// NewMailer creates a new Gmail sender.
func NewMailer(ctx context.Context, logger *slog.Logger, httpClient *http.Client) (*Mailer, error) {
	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Mailer{service: service, logger: logger}, nil
}

// SendEmail implements importer.Notifier.
func (m *Mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	raw, err := buildMessage(to, subject, body, time.Now())
	if err != nil {
		return err
	}
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	if _, err := m.service.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	m.logger.Info("Sent notification mail", "to", to, "subject", subject)
	return nil
}

// buildMessage renders an RFC 5322 message with a single text/plain part.
func buildMessage(to, subject, body string, date time.Time) ([]byte, error) {
	addr, err := mail.ParseAddress(to)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}

	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("To", []*mail.Address{addr})
	h.SetSubject(subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}
	return buf.Bytes(), nil
}
