package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/porkytheblack/yuki/internal/domain"
)

// CreateAccount persists a new account.
func (s *Store) CreateAccount(account *domain.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if err := s.db.Create(account).Error; err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// ListAccounts returns all accounts, default first.
func (s *Store) ListAccounts() ([]domain.Account, error) {
	var accounts []domain.Account
	if err := s.db.Order("is_default DESC, name ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount saves edits to an account's descriptive fields.
func (s *Store) UpdateAccount(account *domain.Account) error {
	result := s.db.Model(&domain.Account{}).Where("id = ?", account.ID).Updates(map[string]any{
		"name":         account.Name,
		"account_type": account.AccountType,
		"institution":  account.Institution,
		"currency":     account.Currency,
	})
	if result.Error != nil {
		return fmt.Errorf("update account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDefaultAccount moves the default flag. Exactly one account holds it at
// any time.
func (s *Store) SetDefaultAccount(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var account domain.Account
		if err := tx.First(&account, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&domain.Account{}).Where("is_default = ?", true).Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Account{}).Where("id = ?", id).Update("is_default", true).Error
	})
}

// DeleteAccount removes an account. The default account is protected.
// Ledger entries pointing at the deleted account are reassigned to the
// default account rather than orphaned.
func (s *Store) DeleteAccount(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var account domain.Account
		if err := tx.First(&account, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if account.IsDefault {
			return ErrProtected
		}

		var fallback domain.Account
		if err := tx.First(&fallback, "is_default = ?", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.LedgerEntry{}).Where("account_id = ?", id).Update("account_id", fallback.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&account).Error
	})
}
