package repository

import (
	"time"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRepository interface {
	WithTx(tx *gorm.DB) ChatRepository
	FindConversationByUserID(userID uint) (*model.Conversation, error)
	FindConversationByID(id uint) (*model.Conversation, error)
	FindConversationForUpdate(id uint) (*model.Conversation, error)
	GetOrCreateConversation(userID uint) (*model.Conversation, error)
	FindConversations(unreadOnly bool, page Pagination) ([]model.Conversation, int64, error)
	CreateMessage(message *model.Message) error
	FindMessages(conversationID uint, limit int) ([]model.Message, error)
	RecordMessage(conversationID uint, content string, at time.Time, from model.SenderRole) error
	MarkRead(conversationID uint, reader model.SenderRole) error
	CountUnreadByAdmin() (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) WithTx(tx *gorm.DB) ChatRepository {
	return &chatRepository{db: tx}
}

func (r *chatRepository) FindConversationByUserID(userID uint) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.Where("user_id = ?", userID).First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *chatRepository) FindConversationByID(id uint) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "email")
	}).First(&conversation, id).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *chatRepository) FindConversationForUpdate(id uint) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&conversation, id).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// GetOrCreateConversation relies on the unique index on user_id so two
// racing first messages end up in the same thread.
func (r *chatRepository) GetOrCreateConversation(userID uint) (*model.Conversation, error) {
	conversation := model.Conversation{UserID: userID}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Omit("User", "Messages").Create(&conversation).Error
	if err != nil {
		return nil, err
	}
	return r.FindConversationByUserID(userID)
}

// FindConversations lists threads with unread ones first, then by activity.
func (r *chatRepository) FindConversations(unreadOnly bool, page Pagination) ([]model.Conversation, int64, error) {
	query := r.db.Model(&model.Conversation{})
	if unreadOnly {
		query = query.Where("unread_by_admin = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var conversations []model.Conversation
	err := page.apply(query).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Order("unread_by_admin DESC").
		Order("last_message_at DESC").
		Order("id DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, 0, err
	}
	return conversations, total, nil
}

func (r *chatRepository) CreateMessage(message *model.Message) error {
	return r.db.Create(message).Error
}

// FindMessages returns the latest limit messages in chronological order.
func (r *chatRepository) FindMessages(conversationID uint, limit int) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// RecordMessage rewrites the denormalized summary after a new message and
// flags the thread unread for the other party.
func (r *chatRepository) RecordMessage(conversationID uint, content string, at time.Time, from model.SenderRole) error {
	updates := map[string]interface{}{
		"last_message":    content,
		"last_message_at": at,
	}
	if from == model.SenderRoleAdmin {
		updates["unread_by_user"] = true
	} else {
		updates["unread_by_admin"] = true
	}

	result := r.db.Model(&model.Conversation{}).Where("id = ?", conversationID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *chatRepository) MarkRead(conversationID uint, reader model.SenderRole) error {
	column := "unread_by_user"
	if reader == model.SenderRoleAdmin {
		column = "unread_by_admin"
	}
	result := r.db.Model(&model.Conversation{}).Where("id = ?", conversationID).Update(column, false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *chatRepository) CountUnreadByAdmin() (int64, error) {
	var count int64
	err := r.db.Model(&model.Conversation{}).Where("unread_by_admin = ?", true).Count(&count).Error
	return count, err
}
