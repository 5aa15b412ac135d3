package models

import "time"

// Attachment is one MIME part of a Message (spec §3). Raw bytes are never
// persisted — only the extracted UTF-8 text, written exactly once at
// ingestion time.
type Attachment struct {
	ID        uint `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MessageID uint `gorm:"column:message_id;not null;index" json:"messageId"`

	Filename    string `gorm:"column:filename;type:varchar(255)" json:"filename"`
	ContentType string `gorm:"column:content_type;type:varchar(255)" json:"contentType"`
	ContentID   string `gorm:"column:content_id;type:varchar(255)" json:"contentId,omitempty"`
	Size        int    `gorm:"column:size;default:0" json:"size"`

	ExtractedText *string `gorm:"column:extracted_text;type:text" json:"extractedText,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:current_timestamp" json:"createdAt"`
}

func (Attachment) TableName() string {
	return "attachments"
}
