// Package email provides a sink that delivers rendered reports over SMTP.
//
// An empty recipient list is an immediate success: there is nothing to do,
// which is not a failure.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/oversite/web-fault-observe/pkg/webfault"
)

// SendFunc performs the actual SMTP submission. Tests substitute it.
type SendFunc func(addr, from string, to []string, msg []byte) error

// EmailSinkOption configures the email sink.
type EmailSinkOption func(*emailSinkConfig)

type emailSinkConfig struct {
	subjectPrefix string
	send          SendFunc
}

// WithSubjectPrefix sets a prefix for the generated subject line.
func WithSubjectPrefix(prefix string) EmailSinkOption {
	return func(c *emailSinkConfig) {
		c.subjectPrefix = prefix
	}
}

// WithSendFunc replaces the SMTP submission, used in tests.
func WithSendFunc(send SendFunc) EmailSinkOption {
	return func(c *emailSinkConfig) {
		if send != nil {
			c.send = send
		}
	}
}

// emailSink delivers reports by email.
type emailSink struct {
	server        string
	from          string
	fromName      string
	recipients    []string
	subjectPrefix string
	send          SendFunc
}

// NewEmailSink creates a sink that submits to the given SMTP server
// ("host:port"; port 25 is assumed when absent). Recipients are the
// ';'-separated list from settings, already split.
func NewEmailSink(server, from, fromName string, recipients []string, opts ...EmailSinkOption) webfault.Sink {
	cfg := &emailSinkConfig{send: smtpSend}
	for _, opt := range opts {
		opt(cfg)
	}
	return &emailSink{
		server:        server,
		from:          from,
		fromName:      fromName,
		recipients:    recipients,
		subjectPrefix: cfg.subjectPrefix,
		send:          cfg.send,
	}
}

// Name identifies the sink.
func (s *emailSink) Name() string {
	return webfault.ChannelEmail
}

// Send builds and submits the message. No recipients means success.
func (s *emailSink) Send(ctx context.Context, report *webfault.Report) error {
	if len(s.recipients) == 0 {
		return nil
	}
	if s.server == "" {
		return errors.New("no email server configured")
	}
	if s.from == "" {
		return errors.New("no from address configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := s.server
	if !strings.Contains(addr, ":") {
		addr += ":25"
	}

	return s.send(addr, s.from, s.recipients, s.buildMessage(report))
}

// buildMessage renders the RFC 5322 message bytes.
func (s *emailSink) buildMessage(report *webfault.Report) []byte {
	var b strings.Builder

	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}
	subject := report.Title()
	if s.subjectPrefix != "" {
		subject = s.subjectPrefix + " " + subject
	}

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(s.recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(subject))
	fmt.Fprintf(&b, "Date: %s\r\n", report.Timestamp.Format("Mon, 02 Jan 2006 15:04:05 -0700"))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(report.Text)
	return []byte(b.String())
}

// sanitizeHeader strips header-breaking characters from a generated value.
func sanitizeHeader(v string) string {
	v = strings.ReplaceAll(v, "\r", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	return v
}

// Close is a no-op; connections are per-send.
func (s *emailSink) Close() error {
	return nil
}

// smtpSend is the production SendFunc.
func smtpSend(addr, from string, to []string, msg []byte) error {
	return smtp.SendMail(addr, nil, from, to, msg)
}
