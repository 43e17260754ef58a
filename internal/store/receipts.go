package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/porkytheblack/yuki/internal/domain"
)

// CreateReceiptWithItems persists a receipt and its detailed items in one
// transaction. On any failure nothing is persisted.
func (s *Store) CreateReceiptWithItems(receipt *domain.Receipt, items []domain.PurchasedItem) error {
	if receipt.ID == "" {
		receipt.ID = uuid.NewString()
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		items[i].ReceiptID = &receipt.ID
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(receipt).Error; err != nil {
			return fmt.Errorf("create receipt: %w", err)
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("create purchased items: %w", err)
			}
		}
		return nil
	})
}

// GetReceipt returns a receipt or ErrNotFound.
func (s *Store) GetReceipt(id string) (*domain.Receipt, error) {
	var receipt domain.Receipt
	if err := s.db.First(&receipt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return &receipt, nil
}

// ListReceipts returns all receipts.
func (s *Store) ListReceipts() ([]domain.Receipt, error) {
	var receipts []domain.Receipt
	if err := s.db.Find(&receipts).Error; err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	return receipts, nil
}

// ItemsForReceipt returns the detailed items of one receipt.
func (s *Store) ItemsForReceipt(receiptID string) ([]domain.PurchasedItem, error) {
	var items []domain.PurchasedItem
	if err := s.db.Where("receipt_id = ?", receiptID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("items for receipt: %w", err)
	}
	return items, nil
}

// ListPurchasedItems returns all items, newest purchase first. Used by the
// price-history surface.
func (s *Store) ListPurchasedItems() ([]domain.PurchasedItem, error) {
	var items []domain.PurchasedItem
	if err := s.db.Order("purchased_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list purchased items: %w", err)
	}
	return items, nil
}
