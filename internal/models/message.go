package models

import "time"

// Message is one canonicalized email (spec §3). Uniqueness on MessageID is
// the idempotency point the Canonicalization Pipeline pre-checks against.
type Message struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MessageID string `gorm:"column:message_id;type:varchar(998);uniqueIndex;not null" json:"messageId"`

	AccountID uint `gorm:"column:account_id;not null;index" json:"accountId"`

	Sender    string    `gorm:"column:sender;type:varchar(500)" json:"sender"`
	Recipient string    `gorm:"column:recipient;type:varchar(500)" json:"recipient"`
	Subject   string    `gorm:"column:subject;type:text" json:"subject"`
	EmailDate time.Time `gorm:"column:email_date;index" json:"emailDate"`

	BodyPlain string `gorm:"column:body_plain;type:text" json:"bodyPlain"`
	BodyHTML  string `gorm:"column:body_html;type:text" json:"bodyHtml"`

	ProcessedAt     time.Time `gorm:"column:processed_at;index" json:"processedAt"`
	AttachmentCount int       `gorm:"column:attachment_count;default:0" json:"attachmentCount"`

	Attachments []Attachment `gorm:"foreignKey:MessageID;references:ID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
