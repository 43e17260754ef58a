package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/porkytheblack/yuki/internal/classify"
	"github.com/porkytheblack/yuki/internal/domain"
)

// CreateCategory persists a user category. The id is derived from the name
// so model output naming the category maps back to it.
func (s *Store) CreateCategory(category *domain.Category) error {
	if category.ID == "" {
		category.ID = classify.CategoryID(category.Name, nil)
	}
	if err := s.db.Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// ListCategories returns categories; hidden ones only when includeHidden.
func (s *Store) ListCategories(includeHidden bool) ([]domain.Category, error) {
	q := s.db.Order("name ASC")
	if !includeHidden {
		q = q.Where("hidden = ?", false)
	}
	var categories []domain.Category
	if err := q.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CategoryNames returns the visible category display names, the list handed
// to extraction prompts.
func (s *Store) CategoryNames() ([]string, error) {
	var names []string
	if err := s.db.Model(&domain.Category{}).Where("hidden = ?", false).Order("name ASC").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("category names: %w", err)
	}
	return names, nil
}

// UpdateCategory saves edits to name, icon and color.
func (s *Store) UpdateCategory(category *domain.Category) error {
	result := s.db.Model(&domain.Category{}).Where("id = ?", category.ID).Updates(map[string]any{
		"name":  category.Name,
		"icon":  category.Icon,
		"color": category.Color,
	})
	if result.Error != nil {
		return fmt.Errorf("update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCategoryHidden hides or reveals a category. Hiding is the only removal
// available for default categories.
func (s *Store) SetCategoryHidden(id string, hidden bool) error {
	result := s.db.Model(&domain.Category{}).Where("id = ?", id).Update("hidden", hidden)
	if result.Error != nil {
		return fmt.Errorf("set category hidden: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory removes a user category, reassigning its ledger entries to
// the fallback bucket. Default categories return ErrProtected.
func (s *Store) DeleteCategory(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var category domain.Category
		if err := tx.First(&category, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if category.IsDefault {
			return ErrProtected
		}
		if err := tx.Model(&domain.LedgerEntry{}).Where("category_id = ?", id).Update("category_id", domain.OtherCategoryID).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
}

// MergeCategories moves every ledger entry from one user category into
// another, then deletes the source. Default categories cannot be merged away.
func (s *Store) MergeCategories(fromID, toID string) error {
	if fromID == toID {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var from, to domain.Category
		if err := tx.First(&from, "id = ?", fromID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.First(&to, "id = ?", toID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if from.IsDefault {
			return ErrProtected
		}
		if err := tx.Model(&domain.LedgerEntry{}).Where("category_id = ?", fromID).Update("category_id", toID).Error; err != nil {
			return err
		}
		return tx.Delete(&from).Error
	})
}
