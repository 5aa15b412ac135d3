// Package outbound implements the Outbound Sender of spec §4.7: compose an
// RFC 822 message from an Account's SMTP settings and submit it.
package outbound

import (
	"context"
	"fmt"
	"strings"
	"time"

	mailerrors "github.com/customeros/mailserver/internal/errors"
	"github.com/customeros/mailserver/internal/logger"
	"github.com/customeros/mailserver/internal/models"
	"github.com/customeros/mailserver/internal/utils"
	"github.com/customeros/mailserver/interfaces"
)

type Sender struct {
	log logger.Logger
}

func New(log logger.Logger) *Sender {
	return &Sender{log: log}
}

// Send submits msg via the account's SMTP settings (spec §4.7).
func (s *Sender) Send(ctx context.Context, account *models.Account, msg *interfaces.OutboundMessage) error {
	if err := validate(msg); err != nil {
		return err
	}

	from := fromAddress(account)
	headers := buildHeaders(account, from, msg)
	body, err := compose(headers, msg)
	if err != nil {
		return fmt.Errorf("compose message: %w", err)
	}

	recipients := allRecipients(msg)
	return sendToServer(account, from, recipients, body)
}

// Reply implements spec §4.7's reply construction: "Re: " prefix (not
// doubled), quoted original body, In-Reply-To/References set to the
// original Message-ID, recipient is the original sender.
func (s *Sender) Reply(ctx context.Context, account *models.Account, original *models.Message, body interfaces.OutboundBody, additional []string) error {
	subject := "Re: " + utils.NormalizeEmailSubject(original.Subject)

	quoted := interfaces.OutboundBody{
		Text: body.Text + "\n\n" + quoteText(original.BodyPlain),
		HTML: body.HTML,
	}
	if body.HTML != "" && original.BodyHTML != "" {
		quoted.HTML = body.HTML + "<blockquote>" + original.BodyHTML + "</blockquote>"
	}

	msg := &interfaces.OutboundMessage{
		To:         append([]string{original.Sender}, additional...),
		Subject:    subject,
		Body:       quoted,
		InReplyTo:  original.MessageID,
		References: original.MessageID,
	}
	return s.Send(ctx, account, msg)
}

// Forward implements spec §4.7's forward construction: "Fwd: " prefix, a
// prepended human-readable header block, and optional attachment of the
// original's extracted attachment text.
func (s *Sender) Forward(ctx context.Context, account *models.Account, original *models.Message, recipients []string, body interfaces.OutboundBody) error {
	subject := "Fwd: " + utils.NormalizeEmailSubject(original.Subject)

	header := fmt.Sprintf(
		"---------- Forwarded message ----------\nFrom: %s\nDate: %s\nSubject: %s\nTo: %s\n\n",
		original.Sender, original.EmailDate.Format(time.RFC1123Z), original.Subject, original.Recipient,
	)

	fwd := interfaces.OutboundBody{
		Text: header + body.Text + "\n\n" + original.BodyPlain,
		HTML: body.HTML,
	}

	var attachments []interfaces.OutboundAttachment
	for _, a := range original.Attachments {
		if a.ExtractedText == nil || *a.ExtractedText == "" {
			continue
		}
		attachments = append(attachments, interfaces.OutboundAttachment{
			Filename:    a.Filename + ".txt",
			ContentType: "text/plain",
			Data:        []byte(*a.ExtractedText),
		})
	}

	msg := &interfaces.OutboundMessage{
		To:          recipients,
		Subject:     subject,
		Body:        fwd,
		Attachments: attachments,
	}
	return s.Send(ctx, account, msg)
}

func quoteText(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

func validate(msg *interfaces.OutboundMessage) error {
	if len(msg.To)+len(msg.Cc)+len(msg.Bcc) == 0 {
		return mailerrors.ErrRecipientsMissing
	}
	for _, addr := range msg.To {
		if !utils.IsValidEmailSyntax(addr) {
			return mailerrors.ErrInvalidEmail
		}
	}
	if msg.Subject == "" {
		return mailerrors.ErrEmptySubject
	}
	if msg.Body.Text == "" && msg.Body.HTML == "" {
		return mailerrors.ErrEmptyBody
	}
	return nil
}

func fromAddress(account *models.Account) string {
	if utils.LooksLikeAddress(account.AccountName) {
		return account.AccountName
	}
	return account.Username
}

func allRecipients(msg *interfaces.OutboundMessage) []string {
	out := make([]string, 0, len(msg.To)+len(msg.Cc)+len(msg.Bcc))
	out = append(out, msg.To...)
	out = append(out, msg.Cc...)
	out = append(out, msg.Bcc...)
	return out
}
