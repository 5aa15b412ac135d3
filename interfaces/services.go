package interfaces

import (
	"context"

	"github.com/customeros/mailserver/internal/models"
)

// Scheduler drives the Account Scheduler control loop (spec §4.1).
type Scheduler interface {
	Start(ctx context.Context)
	Stop()
	// TriggerAccount runs a single manual poll cycle for one account,
	// reusing the same poller routine against a detached snapshot.
	TriggerAccount(ctx context.Context, accountID uint) error
	Status() SchedulerStatus
}

type SchedulerStatus struct {
	Running      bool            `json:"running"`
	ActiveAccounts int           `json:"activeAccounts"`
	Accounts     []AccountStatus `json:"accounts"`
}

type AccountStatus struct {
	AccountID            uint   `json:"accountId"`
	Name                 string `json:"name"`
	ConnectionStatus     string `json:"connectionStatus"`
	TotalEmailsProcessed int64  `json:"totalEmailsProcessed"`
}

// OutboundSender submits RFC 822 messages via SMTP (spec §4.7).
type OutboundSender interface {
	Send(ctx context.Context, account *models.Account, msg *OutboundMessage) error
	Reply(ctx context.Context, account *models.Account, original *models.Message, body OutboundBody, additionalRecipients []string) error
	Forward(ctx context.Context, account *models.Account, original *models.Message, recipients []string, body OutboundBody) error
}

type OutboundBody struct {
	Text string
	HTML string
}

type OutboundMessage struct {
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        OutboundBody
	ReplyTo     string
	InReplyTo   string
	References  string
	Attachments []OutboundAttachment
}

type OutboundAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
}
