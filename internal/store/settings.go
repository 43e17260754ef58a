package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/porkytheblack/yuki/internal/domain"
	"github.com/porkytheblack/yuki/internal/llm"
)

// providerKey is the settings row holding the active LLM provider as JSON.
const providerKey = "provider"

// GetSetting returns a raw setting value or ErrNotFound.
func (s *Store) GetSetting(key string) (string, error) {
	var setting domain.Setting
	if err := s.db.First(&setting, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting: %w", err)
	}
	return setting.Value, nil
}

// SetSetting upserts a raw setting value.
func (s *Store) SetSetting(key, value string) error {
	setting := domain.Setting{Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

// Provider returns the active LLM provider configuration, or ErrNotFound
// when none has been saved yet.
func (s *Store) Provider() (*llm.Provider, error) {
	raw, err := s.GetSetting(providerKey)
	if err != nil {
		return nil, err
	}
	var provider llm.Provider
	if err := json.Unmarshal([]byte(raw), &provider); err != nil {
		return nil, fmt.Errorf("decode provider setting: %w", err)
	}
	return &provider, nil
}

// SaveProvider stores the active LLM provider configuration.
func (s *Store) SaveProvider(provider llm.Provider) error {
	raw, err := json.Marshal(provider)
	if err != nil {
		return fmt.Errorf("encode provider setting: %w", err)
	}
	return s.SetSetting(providerKey, string(raw))
}

// HasProvider reports whether a provider has been configured.
func (s *Store) HasProvider() (bool, error) {
	_, err := s.GetSetting(providerKey)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
