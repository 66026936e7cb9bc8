// Package notify delivers transactional email.
package notify

import (
	"context"
	"net/mail"
	"sync"

	"github.com/SAP-F-2025/lms-service/internal/utils"
)

// Message is a single outgoing email.
type Message struct {
	To       mail.Address
	ReplyTo  *mail.Address
	Subject  string
	Text     string
	HTML     string
	Category string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of delivering them.
// Used when no SendGrid key is configured.
type LogMailer struct {
	logger utils.Logger
}

func NewLogMailer(logger utils.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "Email not delivered (log mailer)",
		"to", msg.To.Address,
		"subject", msg.Subject,
		"category", msg.Category,
	)
	return nil
}

// RecordingMailer keeps every message in memory.
type RecordingMailer struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{}
}

func (m *RecordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *RecordingMailer) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}
