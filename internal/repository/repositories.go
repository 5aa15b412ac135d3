package repository

import (
	"gorm.io/gorm"

	"github.com/customeros/mailserver/interfaces"
)

// Repositories bundles the repository set handed to services and HTTP
// handlers during server wiring.
type Repositories struct {
	Accounts    interfaces.AccountRepository
	Messages    interfaces.MessageRepository
	Attachments interfaces.AttachmentRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Accounts:    NewAccountRepository(db),
		Messages:    NewMessageRepository(db),
		Attachments: NewAttachmentRepository(db),
	}
}
