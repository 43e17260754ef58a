package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/porkytheblack/yuki/internal/domain"
)

// Seed colors match the ones users already have on disk, so re-seeding an
// existing database is a no-op.
var defaultCategories = []struct {
	ID    string
	Name  string
	Color string
}{
	{"income", "Income", "#22c55e"},
	{"housing", "Housing", "#3b82f6"},
	{"utilities", "Utilities", "#6366f1"},
	{"groceries", "Groceries", "#10b981"},
	{"dining", "Dining", "#f59e0b"},
	{"transportation", "Transportation", "#8b5cf6"},
	{"entertainment", "Entertainment", "#ec4899"},
	{"shopping", "Shopping", "#f97316"},
	{"healthcare", "Healthcare", "#ef4444"},
	{"subscriptions", "Subscriptions", "#14b8a6"},
	{"travel", "Travel", "#06b6d4"},
	{"personal", "Personal", "#84cc16"},
	{"education", "Education", "#a855f7"},
	{"gifts", "Gifts", "#f472b6"},
	{"other", "Other", "#71717a"},
}

// seed inserts the default categories, the default account and the primary
// currency. Idempotent: existing rows are left untouched.
func (s *Store) seed() error {
	now := time.Now()

	categories := make([]domain.Category, 0, len(defaultCategories))
	for _, c := range defaultCategories {
		color := c.Color
		categories = append(categories, domain.Category{
			ID:        c.ID,
			Name:      c.Name,
			Color:     &color,
			IsDefault: true,
			CreatedAt: now,
		})
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	account := domain.Account{
		ID:          "default",
		Name:        "Main Account",
		AccountType: "checking",
		Currency:    "USD",
		IsDefault:   true,
		CreatedAt:   now,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&account).Error; err != nil {
		return fmt.Errorf("seed account: %w", err)
	}

	// USD is only seeded as primary when no currency exists yet, so a user
	// who switched their primary keeps their choice.
	var count int64
	if err := s.db.Model(&domain.Currency{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count currencies: %w", err)
	}
	if count == 0 {
		usd := domain.Currency{
			Code:           "USD",
			Name:           "US Dollar",
			Symbol:         "$",
			ConversionRate: decimal.NewFromInt(1),
			IsPrimary:      true,
			CreatedAt:      now,
		}
		if err := s.db.Create(&usd).Error; err != nil {
			return fmt.Errorf("seed currency: %w", err)
		}
	}
	return nil
}
