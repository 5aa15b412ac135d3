package outbound

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"

	"github.com/customeros/mailserver/internal/models"
)

// sendToServer submits the composed message over SMTP, choosing implicit
// SSL vs plaintext-then-STARTTLS per the account's flags (spec §4.7),
// grounded on the teacher's sendWithExplicitTLS/sendWithSTARTTLS branches.
func sendToServer(account *models.Account, from string, recipients []string, body *bytes.Buffer) error {
	addr := fmt.Sprintf("%s:%d", account.SmtpHost, account.SmtpPort)
	auth := smtp.PlainAuth("", account.Username, account.Password, account.SmtpHost)

	useSTARTTLS := account.SmtpUseTLS || (!account.SmtpUseSSL && account.SmtpPort == 587)

	if account.SmtpUseSSL {
		return sendExplicitTLS(addr, account.SmtpHost, auth, from, recipients, body)
	}
	if useSTARTTLS {
		return sendSTARTTLS(addr, account.SmtpHost, auth, from, recipients, body)
	}
	return smtp.SendMail(addr, auth, from, recipients, body.Bytes())
}

func sendSTARTTLS(addr, host string, auth smtp.Auth, from string, recipients []string, body *bytes.Buffer) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("smtp client %s: %w", addr, err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return fmt.Errorf("smtp starttls %s: %w", addr, err)
	}
	return deliver(client, auth, from, recipients, body)
}

func sendExplicitTLS(addr, host string, auth smtp.Auth, from string, recipients []string, body *bytes.Buffer) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("smtp tls dial %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("smtp client %s: %w", addr, err)
	}
	defer client.Close()

	return deliver(client, auth, from, recipients, body)
}

func deliver(client *smtp.Client, auth smtp.Auth, from string, recipients []string, body *bytes.Buffer) error {
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	for _, r := range recipients {
		if err := client.Rcpt(r); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", r, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return client.Quit()
}
