package interfaces

import (
	"context"

	"github.com/customeros/mailserver/internal/models"
)

// AccountRepository persists Account configurations (spec §3).
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	ListEnabled(ctx context.Context) ([]*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id uint) error
	IncrementProcessed(ctx context.Context, id uint, delta int64) error
	TouchLastCheck(ctx context.Context, id uint, status models.AccountCheckResult) error
}

// MessageRepository persists canonicalized Messages and their Attachments.
type MessageRepository interface {
	// CreateWithAttachments inserts a Message plus its Attachments as a
	// single transaction per spec §4.3's atomic-per-message contract.
	// Returns (nil, nil) when the Message-ID already exists (idempotency
	// pre-check, spec §4.3 step 2).
	CreateWithAttachments(ctx context.Context, message *models.Message, attachments []*models.Attachment) (*models.Message, error)
	ExistsByMessageID(ctx context.Context, messageID string) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	List(ctx context.Context, skip, limit int) ([]*models.Message, int64, error)
	Delete(ctx context.Context, id uint) error
	CountForAccount(ctx context.Context, accountID uint) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

// AttachmentRepository provides direct attachment lookups (e.g. for
// forward-with-original-attachment-text, spec §4.7).
type AttachmentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Attachment, error)
	ListForMessage(ctx context.Context, messageID uint) ([]*models.Attachment, error)
}
