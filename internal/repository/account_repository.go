package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	mailerrors "github.com/customeros/mailserver/internal/errors"
	"github.com/customeros/mailserver/internal/models"
	"github.com/customeros/mailserver/interfaces"
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) interfaces.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	var existing models.Account
	err := r.db.WithContext(ctx).Where("name = ?", account.Name).First(&existing).Error
	if err == nil {
		return mailerrors.ErrAccountNameExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) List(ctx context.Context) ([]*models.Account, error) {
	var accounts []*models.Account
	if err := r.db.WithContext(ctx).Order("id asc").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListEnabled is the scheduler's per-cycle account snapshot query (spec
// §4.1 step 1): "query all enabled Accounts, take a value snapshot".
func (r *accountRepository) ListEnabled(ctx context.Context) ([]*models.Account, error) {
	var accounts []*models.Account
	if err := r.db.WithContext(ctx).Where("enabled = ?", true).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// Delete enforces the referential-integrity invariant: deletion fails if
// any Message refers to the Account (spec §3 Account invariants).
func (r *accountRepository) Delete(ctx context.Context, id uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).Where("account_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return mailerrors.ErrAccountHasMessages
	}
	return r.db.WithContext(ctx).Delete(&models.Account{}, id).Error
}

// IncrementProcessed is the separate short transaction per batch described
// in spec §5's locking/transaction discipline.
func (r *accountRepository) IncrementProcessed(ctx context.Context, id uint, delta int64) error {
	return r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("total_emails_processed", gorm.Expr("total_emails_processed + ?", delta)).Error
}

// TouchLastCheck is run unconditionally on poller exit (spec §5).
func (r *accountRepository) TouchLastCheck(ctx context.Context, id uint, result models.AccountCheckResult) error {
	return r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_check":        gorm.Expr("CURRENT_TIMESTAMP"),
			"connection_status": result.Status,
			"error_message":     result.ErrorMessage,
		}).Error
}
