package store

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/porkytheblack/yuki/internal/domain"
)

// AppendChatHistory records one question/answer exchange. Append-only.
func (s *Store) AppendChatHistory(entry *domain.ChatHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("append chat history: %w", err)
	}
	return nil
}

// ListChatHistory returns the most recent exchanges, newest first.
func (s *Store) ListChatHistory(limit int) ([]domain.ChatHistoryEntry, error) {
	q := s.db.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var entries []domain.ChatHistoryEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}
	return entries, nil
}

// ClearChatHistory deletes the log.
func (s *Store) ClearChatHistory() error {
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.ChatHistoryEntry{}).Error; err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	return nil
}
