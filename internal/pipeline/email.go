// =============================================================================
// email.go - Digest Email Delivery
// =============================================================================
//
// Optional SMTP delivery of the assembled page. The message is RFC 5322 with
// a multipart/alternative body: a markdown-ish text/plain part converted from
// the page for text clients, plus the page itself as text/html. Gmail needs
// an app password, not the account password.
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/sirupsen/logrus"
)

// EmailSender delivers the digest over SMTP with PLAIN auth.
type EmailSender struct {
	cfg  EmailConfig
	conv *md.Converter
	log  *logrus.Logger
}

// NewEmailSender validates the delivery settings up front so a missing
// credential surfaces before any send attempt.
func NewEmailSender(cfg EmailConfig, log *logrus.Logger) (*EmailSender, error) {
	if cfg.Sender == "" {
		return nil, ErrMissingEmailUser
	}
	if cfg.Password == "" {
		return nil, ErrMissingEmailPassword
	}
	if cfg.Recipient == "" {
		return nil, ErrMissingRecipient
	}
	return &EmailSender{
		cfg:  cfg,
		conv: md.NewConverter("", true, nil),
		log:  log,
	}, nil
}

// SendDigest mails the assembled page.
func (es *EmailSender) SendDigest(ctx context.Context, page string, now time.Time) error {
	subject := fmt.Sprintf("Quantum Digest — %s", now.Format("January 02, 2006"))
	return es.sendWithRetry(ctx, es.buildMessage(subject, page))
}

// altBoundary separates the parts of the multipart/alternative body. A fixed
// boundary keeps the message build deterministic; the page content never
// contains this marker.
const altBoundary = "=_quantum-digest_alt"

// buildMessage assembles the RFC 5322 message. The plain part comes from the
// HTML via the markdown converter; if conversion fails the tag-stripped text
// stands in.
func (es *EmailSender) buildMessage(subject, page string) []byte {
	plain, err := es.conv.ConvertString(page)
	if err != nil {
		es.log.Warnf("plain-text conversion: %v", err)
		plain = strings.TrimSpace(cleanHTMLTags(page))
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", es.cfg.Sender)
	fmt.Fprintf(&msg, "To: %s\r\n", es.cfg.Recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n", altBoundary)
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", altBoundary)
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(plain)
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", altBoundary)
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(page)
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "--%s--\r\n", altBoundary)
	return []byte(msg.String())
}

// sendWithRetry attempts the send up to three times with exponential backoff
// (1s, 2s) between attempts.
func (es *EmailSender) sendWithRetry(ctx context.Context, msg []byte) error {
	const maxAttempts = 3
	var lastErr error

	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<(i-1)) * time.Second
			es.log.Infof("retrying email send in %v", wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		if err := es.send(msg); err != nil {
			lastErr = err
			es.log.Warnf("email send failed (attempt %d/%d): %v", i+1, maxAttempts, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("sending email after %d attempts: %w", maxAttempts, lastErr)
}

func (es *EmailSender) send(msg []byte) error {
	auth := smtp.PlainAuth("", es.cfg.Sender, es.cfg.Password, es.cfg.SMTPServer)
	addr := es.cfg.SMTPServer + ":" + es.cfg.SMTPPort
	if err := smtp.SendMail(addr, auth, es.cfg.Sender, []string{es.cfg.Recipient}, msg); err != nil {
		return fmt.Errorf("SMTP send: %w", err)
	}
	return nil
}

// SendErrorNotification reports a failed run in a plain-text mail. The Lambda
// entrypoint uses this when a scheduled run dies with nobody watching a
// terminal.
func (es *EmailSender) SendErrorNotification(ctx context.Context, runErr error, sourceErrors []string) error {
	now := time.Now()
	subject := fmt.Sprintf("[Quantum Digest] run failed - %s", now.Format("2006-01-02 15:04"))

	var body strings.Builder
	body.WriteString("Quantum Digest run failed:\n\n")
	fmt.Fprintf(&body, "  %v\n", runErr)
	if len(sourceErrors) > 0 {
		body.WriteString("\nSource errors:\n")
		for _, e := range sourceErrors {
			body.WriteString("  " + e + "\n")
		}
	}
	fmt.Fprintf(&body, "\nTimestamp: %s\n", now.Format(time.RFC3339))

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", es.cfg.Sender)
	fmt.Fprintf(&msg, "To: %s\r\n", es.cfg.Recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body.String())

	return es.sendWithRetry(ctx, []byte(msg.String()))
}
