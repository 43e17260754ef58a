package store

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/porkytheblack/yuki/internal/domain"
)

// defaultCurrencyKey is the settings row overriding the fallback currency.
const defaultCurrencyKey = "default_currency"

// DefaultCurrency resolves the currency code for entries produced without
// one: the default_currency setting when set, else the primary currency,
// else USD.
func (s *Store) DefaultCurrency() string {
	if code, err := s.GetSetting(defaultCurrencyKey); err == nil && code != "" {
		return code
	}
	var currency domain.Currency
	if err := s.db.First(&currency, "is_primary = ?", true).Error; err == nil {
		return currency.Code
	}
	return "USD"
}

// CreateCurrency persists a currency row.
func (s *Store) CreateCurrency(currency *domain.Currency) error {
	if err := s.db.Create(currency).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create currency: %w", err)
	}
	return nil
}

// ListCurrencies returns all currencies, primary first.
func (s *Store) ListCurrencies() ([]domain.Currency, error) {
	var currencies []domain.Currency
	if err := s.db.Order("is_primary DESC, code ASC").Find(&currencies).Error; err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	return currencies, nil
}

// UpdateConversionRate sets the rate of a non-primary currency relative to
// the primary.
func (s *Store) UpdateConversionRate(code string, rate decimal.Decimal) error {
	result := s.db.Model(&domain.Currency{}).Where("code = ?", code).Update("conversion_rate", rate)
	if result.Error != nil {
		return fmt.Errorf("update conversion rate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPrimaryCurrency moves the primary flag and pins the new primary's rate
// to 1. Exactly one currency is primary at any time.
func (s *Store) SetPrimaryCurrency(code string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var currency domain.Currency
		if err := tx.First(&currency, "code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&domain.Currency{}).Where("is_primary = ?", true).Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Currency{}).Where("code = ?", code).Updates(map[string]any{
			"is_primary":      true,
			"conversion_rate": decimal.NewFromInt(1),
		}).Error
	})
}

// DeleteCurrency removes a non-primary currency. Ledger entries keep their
// currency code as free text, so rows referencing the code stay valid.
func (s *Store) DeleteCurrency(code string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var currency domain.Currency
		if err := tx.First(&currency, "code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if currency.IsPrimary {
			return ErrProtected
		}
		return tx.Delete(&currency).Error
	})
}
