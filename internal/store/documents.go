package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/porkytheblack/yuki/internal/domain"
)

// CreateDocument persists an upload's metadata row. A hash collision with an
// existing document returns ErrDuplicate and persists nothing.
func (s *Store) CreateDocument(doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if err := s.db.Create(doc).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetDocument returns the document or ErrNotFound.
func (s *Store) GetDocument(id string) (*domain.Document, error) {
	var doc domain.Document
	if err := s.db.First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// DocumentByHash looks an upload up by content hash.
func (s *Store) DocumentByHash(hash string) (*domain.Document, error) {
	var doc domain.Document
	if err := s.db.First(&doc, "hash = ?", hash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("document by hash: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns all documents, newest first.
func (s *Store) ListDocuments() ([]domain.Document, error) {
	var docs []domain.Document
	if err := s.db.Order("uploaded_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes the document and everything extracted from it:
// ledger entries with this document_id, receipts, and the receipts' items.
// Entries with a different or null document_id are never touched.
func (s *Store) DeleteDocument(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var doc domain.Document
		if err := tx.First(&doc, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var receiptIDs []string
		if err := tx.Model(&domain.Receipt{}).Where("document_id = ?", id).Pluck("id", &receiptIDs).Error; err != nil {
			return err
		}
		if len(receiptIDs) > 0 {
			if err := tx.Where("receipt_id IN ?", receiptIDs).Delete(&domain.PurchasedItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", receiptIDs).Delete(&domain.Receipt{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("document_id = ?", id).Delete(&domain.LedgerEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&doc).Error
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
