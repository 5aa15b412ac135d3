package database

import (
	"gorm.io/gorm"

	"github.com/customeros/mailserver/internal/models"
)

func Init(dbConfig *DatabaseConfig) (*gorm.DB, error) {
	return NewConnection(dbConfig)
}

// Migrate runs the one-shot schema migration. Process entry points and
// migration scripts are external collaborators per spec §1; this function
// is the narrow surface main.go's "migrate" subcommand calls into.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.Message{},
		&models.Attachment{},
	)
}
