package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/porkytheblack/yuki/internal/domain"
)

// ActiveSession returns the most recently updated conversation session,
// creating one when none exists.
func (s *Store) ActiveSession() (*domain.ConversationSession, error) {
	var session domain.ConversationSession
	err := s.db.Order("updated_at DESC").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		session = domain.ConversationSession{ID: uuid.NewString()}
		if err := s.db.Create(&session).Error; err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		return &session, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active session: %w", err)
	}
	return &session, nil
}

// AppendMessage records one conversation turn and bumps the session.
func (s *Store) AppendMessage(sessionID, role, content string) error {
	message := domain.ConversationMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("append message: %w", err)
		}
		return tx.Model(&domain.ConversationSession{}).Where("id = ?", sessionID).Update("updated_at", time.Now()).Error
	})
}

// RecentMessages returns the last n turns of a session in chronological
// order, for replaying into prompts.
func (s *Store) RecentMessages(sessionID string, n int) ([]domain.ConversationMessage, error) {
	var messages []domain.ConversationMessage
	err := s.db.Where("session_id = ?", sessionID).Order("created_at DESC").Limit(n).Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	// reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ResetConversation starts a fresh session. Old sessions and their messages
// are removed.
func (s *Store) ResetConversation() (*domain.ConversationSession, error) {
	session := domain.ConversationSession{ID: uuid.NewString()}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.ConversationMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.ConversationSession{}).Error; err != nil {
			return err
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, fmt.Errorf("reset conversation: %w", err)
	}
	return &session, nil
}
