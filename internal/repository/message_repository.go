package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/customeros/mailserver/internal/models"
	"github.com/customeros/mailserver/interfaces"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) interfaces.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) ExistsByMessageID(ctx context.Context, messageID string) (bool, error) {
	var existing models.Message
	err := r.db.WithContext(ctx).Select("id").Where("message_id = ?", messageID).First(&existing).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// CreateWithAttachments implements the atomic-per-message contract of spec
// §4.3: the idempotency pre-check, the Message insert, and every Attachment
// insert happen inside one transaction — "a partially-ingested message is
// not permitted".
func (r *messageRepository) CreateWithAttachments(ctx context.Context, message *models.Message, attachments []*models.Attachment) (*models.Message, error) {
	var result *models.Message

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Message
		err := tx.Select("id").Where("message_id = ?", message.MessageID).First(&existing).Error
		if err == nil {
			// Already ingested — idempotency point, spec §4.3 step 2.
			result = nil
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		message.AttachmentCount = len(attachments)
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		for _, a := range attachments {
			a.MessageID = message.ID
			if err := tx.Create(a).Error; err != nil {
				return err
			}
		}

		message.Attachments = nil
		for _, a := range attachments {
			message.Attachments = append(message.Attachments, *a)
		}
		result = message
		return nil
	})

	return result, err
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Preload("Attachments").First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// List is the paginated newest-first listing backing GET /emails (spec §6).
func (r *messageRepository) List(ctx context.Context, skip, limit int) ([]*models.Message, int64, error) {
	var messages []*models.Message
	var count int64

	if err := r.db.WithContext(ctx).Model(&models.Message{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Order("email_date desc").
		Offset(skip).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, count, nil
}

// Delete cascades to Attachments via the FK constraint declared on
// Message.Attachments (spec §3 invariant: "delete cascades to Attachments").
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Select("Attachments").Delete(&models.Message{}, id).Error
}

func (r *messageRepository) CountForAccount(ctx context.Context, accountID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).Where("account_id = ?", accountID).Count(&count).Error
	return count, err
}

func (r *messageRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).Count(&count).Error
	return count, err
}
