// Package canonicalize implements the canonicalization pipeline of spec
// §4.3: turning one raw RFC 822 message plus its IMAP provenance into a
// Message row and its Attachment rows, inserted atomically.
package canonicalize

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"

	"github.com/customeros/mailserver/interfaces"
	"github.com/customeros/mailserver/internal/logger"
	"github.com/customeros/mailserver/internal/models"
	"github.com/customeros/mailserver/internal/policy"
	"github.com/customeros/mailserver/internal/textextract"
	"github.com/customeros/mailserver/internal/utils"
	"github.com/customeros/mailserver/services/imapclient"
)

const (
	maxSenderLen  = 500
	maxRecipient  = 500
)

// Pipeline canonicalizes raw IMAP messages and persists them (spec §4.3,
// §4.4). One Pipeline is shared by all account pollers; it holds no
// per-account state.
type Pipeline struct {
	log       logger.Logger
	messages  interfaces.MessageRepository
	extractor *textextract.Extractor
}

func New(log logger.Logger, messages interfaces.MessageRepository, extractor *textextract.Extractor) *Pipeline {
	return &Pipeline{log: log, messages: messages, extractor: extractor}
}

// Ingest implements spec §4.3 steps 1-7 plus the attachment processor of
// §4.4. It returns (skipped=true, nil) when the message was already
// ingested (the idempotency point of step 2).
func (p *Pipeline) Ingest(ctx context.Context, account *models.Account, view policy.View, raw imapclient.RawMessage) (skipped bool, err error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw.Octets))
	if err != nil {
		return false, fmt.Errorf("parse message uid=%d: %w", raw.UID, err)
	}

	messageID := utils.NormalizeMessageID(env.GetHeader("Message-Id"))
	if messageID == "" {
		messageID = utils.SynthesizeMessageID(raw.UID, account.ID)
	}

	sender := clamp(env.GetHeader("From"), maxSenderLen)
	recipient := clamp(env.GetHeader("To"), maxRecipient)
	subject := env.GetHeader("Subject")

	emailDate, err := utils.ParseOriginDate(env.GetHeader("Date"))
	if err != nil {
		emailDate = utils.Now()
	}

	bodyPlain := env.Text
	bodyHTML := env.HTML
	if bodyPlain == "" && bodyHTML != "" {
		if text := textextract.StripHTML(bodyHTML); text != "" {
			bodyPlain = text
		}
	}

	message := &models.Message{
		MessageID:   messageID,
		AccountID:   account.ID,
		Sender:      sender,
		Recipient:   recipient,
		Subject:     subject,
		EmailDate:   emailDate,
		BodyPlain:   bodyPlain,
		BodyHTML:    bodyHTML,
		ProcessedAt: time.Now().UTC(),
	}

	attachments := p.buildAttachments(env, messageID, view)

	created, err := p.messages.CreateWithAttachments(ctx, message, attachments)
	if err != nil {
		return false, fmt.Errorf("persist message %s: %w", messageID, err)
	}
	if created == nil {
		// Idempotency point (spec §4.3 step 2): already ingested.
		return true, nil
	}
	return false, nil
}

func clamp(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) > max {
		return s[:max]
	}
	return s
}
