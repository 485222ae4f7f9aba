// Package email sends report artifacts over SMTP for the share endpoint.
package email

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
)

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// IsConfigured returns true if SMTP settings are present.
func (c SMTPConfig) IsConfigured() bool {
	return c.Host != "" && c.From != ""
}

// Attachment is a report artifact carried by a share email. The bytes are
// exactly what the download endpoint would have served.
type Attachment struct {
	Filename string
	MIME     string
	Content  []byte
}

// FormatShareBody builds the plain-text body accompanying a shared report.
func FormatShareBody(orgName, reportLabel, filename string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi,\n\nAttached is the %s for %s.\n\n", reportLabel, orgName)
	fmt.Fprintf(&buf, "File: %s\n\nThanks!\n", filename)
	return buf.String()
}

// Send sends a plain-text email via SMTP.
// Supports both port 465 (implicit TLS) and port 587 (STARTTLS).
func Send(cfg SMTPConfig, to []string, subject, body string) error {
	if !cfg.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		cfg.From,
		strings.Join(to, ", "),
		subject,
		body,
	)

	return deliver(cfg, to, msg)
}

// SendReport sends an email carrying one attached report artifact.
func SendReport(cfg SMTPConfig, to []string, subject, body string, att Attachment) error {
	if !cfg.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}

	msg, err := buildMixedMessage(cfg.From, to, subject, body, att)
	if err != nil {
		return err
	}

	return deliver(cfg, to, msg)
}

// deliver routes the message through the TLS path the port calls for.
func deliver(cfg SMTPConfig, to []string, msg string) error {
	addr := cfg.Host + ":" + cfg.Port

	if cfg.Port == "465" {
		return sendImplicitTLS(cfg, addr, to, msg)
	}
	return sendSTARTTLS(cfg, addr, to, msg)
}

// buildMixedMessage assembles a multipart/mixed message with a text body
// part and one base64-encoded attachment.
func buildMixedMessage(from string, to []string, subject, body string, att Attachment) (string, error) {
	var parts bytes.Buffer
	mw := multipart.NewWriter(&parts)

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	tw, err := mw.CreatePart(textHeader)
	if err != nil {
		return "", fmt.Errorf("creating text part: %w", err)
	}
	if _, err := tw.Write([]byte(body)); err != nil {
		return "", fmt.Errorf("writing text part: %w", err)
	}

	attHeader := textproto.MIMEHeader{}
	attHeader.Set("Content-Type", att.MIME)
	attHeader.Set("Content-Transfer-Encoding", "base64")
	attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))
	aw, err := mw.CreatePart(attHeader)
	if err != nil {
		return "", fmt.Errorf("creating attachment part: %w", err)
	}
	if err := writeBase64(aw, att.Content); err != nil {
		return "", fmt.Errorf("writing attachment: %w", err)
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing message: %w", err)
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%q\r\n\r\n",
		from,
		strings.Join(to, ", "),
		subject,
		mw.Boundary(),
	)

	return headers + parts.String(), nil
}

// writeBase64 encodes content in 76-character lines per RFC 2045.
func writeBase64(w io.Writer, content []byte) error {
	enc := base64.StdEncoding.EncodeToString(content)
	for len(enc) > 76 {
		if _, err := w.Write([]byte(enc[:76] + "\r\n")); err != nil {
			return err
		}
		enc = enc[76:]
	}
	_, err := w.Write([]byte(enc))
	return err
}

// sendImplicitTLS connects over TLS directly (port 465/SMTPS).
func sendImplicitTLS(cfg SMTPConfig, addr string, to []string, msg string) error {
	tlsCfg := &tls.Config{ServerName: cfg.Host}
	conn, err := tls.Dial("tcp", addr, tlsCfg)
	if err != nil {
		return fmt.Errorf("TLS dial: %w", err)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer func() {
		if quitErr := c.Quit(); quitErr != nil {
			err = fmt.Errorf("quit: %w", quitErr)
		}
	}()

	if cfg.User != "" {
		auth := smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.Mail(cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return nil
}

// sendSTARTTLS connects plain then upgrades to TLS (port 587).
func sendSTARTTLS(cfg SMTPConfig, addr string, to []string, msg string) error {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, cfg.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
