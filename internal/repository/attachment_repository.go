package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/customeros/mailserver/internal/models"
	"github.com/customeros/mailserver/interfaces"
)

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) interfaces.AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) GetByID(ctx context.Context, id uint) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := r.db.WithContext(ctx).First(&attachment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListForMessage(ctx context.Context, messageID uint) ([]*models.Attachment, error) {
	var attachments []*models.Attachment
	if err := r.db.WithContext(ctx).Where("message_id = ?", messageID).Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}
