package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/porkytheblack/yuki/internal/domain"
)

// CreateLedgerEntry persists one entry. The amount arrives already signed by
// the producing pathway and is stored untouched.
func (s *Store) CreateLedgerEntry(entry *domain.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// CreateLedgerEntries persists a batch atomically: either every entry lands
// or none do.
func (s *Store) CreateLedgerEntries(entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("create ledger entries: %w", err)
		}
		return nil
	})
}

// GetLedgerEntry returns one entry or ErrNotFound.
func (s *Store) GetLedgerEntry(id string) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	if err := s.db.First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return &entry, nil
}

// LedgerFilter narrows ListLedger. Zero values mean "no constraint".
type LedgerFilter struct {
	CategoryID string
	AccountID  string
	DocumentID string
	From       string
	To         string
	Limit      int
}

// ListLedger returns entries newest first, optionally filtered.
func (s *Store) ListLedger(filter LedgerFilter) ([]domain.LedgerEntry, error) {
	q := s.db.Order("date DESC, created_at DESC")
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.AccountID != "" {
		q = q.Where("account_id = ?", filter.AccountID)
	}
	if filter.DocumentID != "" {
		q = q.Where("document_id = ?", filter.DocumentID)
	}
	if filter.From != "" {
		q = q.Where("date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("date <= ?", filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var entries []domain.LedgerEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return entries, nil
}

// UpdateLedgerEntry saves user edits to an existing entry.
func (s *Store) UpdateLedgerEntry(entry *domain.LedgerEntry) error {
	result := s.db.Model(&domain.LedgerEntry{}).Where("id = ?", entry.ID).Updates(map[string]any{
		"date":        entry.Date,
		"description": entry.Description,
		"amount":      entry.Amount,
		"currency":    entry.Currency,
		"category_id": entry.CategoryID,
		"account_id":  entry.AccountID,
		"merchant":    entry.Merchant,
		"notes":       entry.Notes,
	})
	if result.Error != nil {
		return fmt.Errorf("update ledger entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLedgerEntry removes one entry and detaches any purchased items that
// referenced it.
func (s *Store) DeleteLedgerEntry(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.PurchasedItem{}).Where("ledger_id = ?", id).Update("ledger_id", nil).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&domain.LedgerEntry{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
