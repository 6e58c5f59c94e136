package email

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Message is an outbound email. Body is Markdown and is rendered to HTML
// before dispatch.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender dispatches a message to one recipient.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func renderer() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify))
	})
	return markdown
}

// RenderHTML converts a Markdown body to an HTML fragment. Raw HTML in the
// source is escaped.
func RenderHTML(body string) (string, error) {
	var buf bytes.Buffer
	if err := renderer().Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to render email body: %w", err)
	}
	return buf.String(), nil
}

// SMTPSender sends HTML email using SMTP with PLAIN auth.
type SMTPSender struct {
	host     string
	port     string
	from     string
	password string
}

func NewSMTPSender(host, port, from, password string) *SMTPSender {
	return &SMTPSender{host: host, port: port, from: from, password: password}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	html, err := RenderHTML(msg.Body)
	if err != nil {
		return err
	}

	raw, err := buildMessage(s.from, msg.To, msg.Subject, html)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	address := s.host + ":" + s.port

	if err := smtp.SendMail(address, auth, s.from, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

func buildMessage(from, to, subject, html string) ([]byte, error) {
	for _, v := range []string{from, to, subject} {
		if strings.ContainsAny(v, "\r\n") {
			return nil, fmt.Errorf("invalid email header value")
		}
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")
	return []byte(b.String()), nil
}

// LogSender stands in for SMTP in local development. It records only the
// recipient and subject; bodies carry codes and reset links.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	logrus.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("SMTP not configured, email not delivered")
	return nil
}
