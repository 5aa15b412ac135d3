package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/mailserver/internal/enum"
)

// Account is a mailbox configuration: IMAP+SMTP credentials plus the
// per-account policy overrides merged by the Policy Resolver (spec §4.2).
//
// Policy override fields are tri-valued (unset / true / false), modelled
// as *bool per the re-architecture note in spec §9 ("Dynamic override
// flags... implement as a small value type with a single resolve method").
type Account struct {
	ID          uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"column:name;type:varchar(255);uniqueIndex;not null" json:"name"`
	AccountName string `gorm:"column:account_name;type:varchar(255)" json:"accountName"`

	ImapHost     string            `gorm:"column:imap_host;type:varchar(255);not null" json:"imapHost"`
	ImapPort     int               `gorm:"column:imap_port;not null" json:"imapPort"`
	ImapUseSSL   bool              `gorm:"column:imap_use_ssl;default:true" json:"imapUseSsl"`
	ImapUseTLS   bool              `gorm:"column:imap_use_tls;default:false" json:"imapUseTls"`
	SmtpHost     string            `gorm:"column:smtp_host;type:varchar(255)" json:"smtpHost"`
	SmtpPort     int               `gorm:"column:smtp_port" json:"smtpPort"`
	SmtpUseSSL   bool              `gorm:"column:smtp_use_ssl;default:false" json:"smtpUseSsl"`
	SmtpUseTLS   bool              `gorm:"column:smtp_use_tls;default:true" json:"smtpUseTls"`
	Username     string            `gorm:"column:username;type:varchar(255);not null" json:"username"`
	Password     string            `gorm:"column:password;type:varchar(500);not null" json:"-"`

	Enabled bool `gorm:"column:enabled;default:true" json:"enabled"`

	// Policy overrides (nil = unset, inherit global).
	StoreTextOnlyOverride    *bool  `gorm:"column:store_text_only_override" json:"storeTextOnlyOverride,omitempty"`
	MaxAttachmentSizeOverride *int64 `gorm:"column:max_attachment_size_override" json:"maxAttachmentSizeOverride,omitempty"`
	ExtractPDFOverride       *bool  `gorm:"column:extract_pdf_override" json:"extractPdfOverride,omitempty"`
	ExtractDocumentOverride  *bool  `gorm:"column:extract_document_override" json:"extractDocumentOverride,omitempty"`
	ExtractImageOCROverride  *bool  `gorm:"column:extract_image_ocr_override" json:"extractImageOcrOverride,omitempty"`
	ExtractTextualOverride   *bool  `gorm:"column:extract_textual_override" json:"extractTextualOverride,omitempty"`

	ConnectionStatus enum.ConnectionStatus `gorm:"column:connection_status;type:varchar(50);default:'unknown'" json:"connectionStatus"`
	LastCheck        *time.Time            `gorm:"column:last_check" json:"lastCheck,omitempty"`
	ErrorMessage     string                `gorm:"column:error_message;type:text" json:"errorMessage,omitempty"`

	TotalEmailsProcessed int64 `gorm:"column:total_emails_processed;default:0" json:"totalEmailsProcessed"`

	CreatedAt time.Time      `gorm:"column:created_at;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;default:current_timestamp" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// ImapSecurity derives the IMAP security enum from the two boolean flags,
// matching the Account-level independence the spec requires for IMAP vs SMTP.
func (a *Account) ImapSecurity() enum.EmailSecurity {
	switch {
	case a.ImapUseSSL:
		return enum.EmailSecuritySSL
	case a.ImapUseTLS:
		return enum.EmailSecurityStartTLS
	default:
		return enum.EmailSecurityNone
	}
}

func (a *Account) SmtpSecurity() enum.EmailSecurity {
	switch {
	case a.SmtpUseSSL:
		return enum.EmailSecuritySSL
	case a.SmtpUseTLS:
		return enum.EmailSecurityStartTLS
	default:
		return enum.EmailSecurityNone
	}
}

// AccountCheckResult is recorded unconditionally on poller exit (spec §4.1,
// "in a finally block update last_check even if batching was aborted").
type AccountCheckResult struct {
	Status       enum.ConnectionStatus
	ErrorMessage string
}
