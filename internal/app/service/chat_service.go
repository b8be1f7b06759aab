package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	MaxMessageLength    = 2000
	messageHistoryLimit = 100
	previewLength       = 120
)

// ConversationView is a conversation with its most recent messages.
type ConversationView struct {
	Conversation *model.Conversation `json:"conversation"`
	Messages     []model.Message     `json:"messages"`
}

// ChatEvent is pushed to websocket clients for every new message.
type ChatEvent struct {
	ConversationID uint           `json:"conversation_id"`
	UserID         uint           `json:"user_id"`
	Message        *model.Message `json:"message"`
}

type ChatService interface {
	GetMyConversation(userID uint) (*ConversationView, error)
	SendUserMessage(ctx context.Context, userID uint, content string) (*model.Message, error)
	MarkReadByUser(userID uint) error

	ListConversations(unreadOnly bool, page repository.Pagination) ([]model.Conversation, int64, error)
	GetConversation(conversationID uint) (*ConversationView, error)
	SendAdminMessage(ctx context.Context, adminID, conversationID uint, content string) (*model.Message, error)
	MarkReadByAdmin(conversationID uint) error
}

type chatService struct {
	db               *gorm.DB
	repo             repository.ChatRepository
	notificationRepo repository.NotificationRepository
	publisher        Publisher
}

func NewChatService(
	db *gorm.DB,
	repo repository.ChatRepository,
	notificationRepo repository.NotificationRepository,
	publisher Publisher,
) ChatService {
	return &chatService{
		db:               db,
		repo:             repo,
		notificationRepo: notificationRepo,
		publisher:        publisherOrNoop(publisher),
	}
}

func normalizeMessage(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return "", ErrMessageTooLong
	}
	return content, nil
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewLength]) + "…"
}

func (s *chatService) view(conversation *model.Conversation) (*ConversationView, error) {
	messages, err := s.repo.FindMessages(conversation.ID, messageHistoryLimit)
	if err != nil {
		return nil, apperrors.Upstream(err, "chat")
	}
	return &ConversationView{Conversation: conversation, Messages: messages}, nil
}

func (s *chatService) GetMyConversation(userID uint) (*ConversationView, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	conversation, err := s.repo.GetOrCreateConversation(userID)
	if err != nil {
		return nil, apperrors.Upstream(err, "chat")
	}
	return s.view(conversation)
}

// SendUserMessage appends a customer message, creating the conversation on
// first use, and raises a new_message notification for the staff.
func (s *chatService) SendUserMessage(ctx context.Context, userID uint, content string) (*model.Message, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	content, err := normalizeMessage(content)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		SenderID:   userID,
		SenderRole: model.SenderRoleUser,
		Content:    content,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		conversation, err := repo.GetOrCreateConversation(userID)
		if err != nil {
			return err
		}
		message.ConversationID = conversation.ID
		if err := repo.CreateMessage(message); err != nil {
			return err
		}
		if err := repo.RecordMessage(conversation.ID, preview(content), message.CreatedAt, model.SenderRoleUser); err != nil {
			return err
		}
		return s.notificationRepo.WithTx(tx).Create(&model.Notification{
			Type:    model.NotificationTypeNewMessage,
			Message: fmt.Sprintf("رسالة جديدة من عميل: %s", preview(content)),
			Link:    fmt.Sprintf("/admin/chat/%d", conversation.ID),
		})
	})
	if err != nil {
		logger.Error("Failed to send customer message", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, apperrors.Upstream(err, "chat")
	}

	event := ChatEvent{ConversationID: message.ConversationID, UserID: userID, Message: message}
	s.publisher.PublishToAdmins(EventChatMessage, event)
	s.publisher.PublishToUser(userID, EventChatMessage, event)
	return message, nil
}

func (s *chatService) MarkReadByUser(userID uint) error {
	conversation, err := s.repo.FindConversationByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.Upstream(err, "chat")
	}
	if err := s.repo.MarkRead(conversation.ID, model.SenderRoleUser); err != nil {
		return apperrors.Upstream(err, "chat")
	}
	return nil
}

func (s *chatService) ListConversations(unreadOnly bool, page repository.Pagination) ([]model.Conversation, int64, error) {
	conversations, total, err := s.repo.FindConversations(unreadOnly, page)
	if err != nil {
		return nil, 0, apperrors.Upstream(err, "chat")
	}
	return conversations, total, nil
}

func (s *chatService) GetConversation(conversationID uint) (*ConversationView, error) {
	conversation, err := s.repo.FindConversationByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationMissing
		}
		return nil, apperrors.Upstream(err, "chat")
	}
	return s.view(conversation)
}

func (s *chatService) SendAdminMessage(ctx context.Context, adminID, conversationID uint, content string) (*model.Message, error) {
	content, err := normalizeMessage(content)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		ConversationID: conversationID,
		SenderID:       adminID,
		SenderRole:     model.SenderRoleAdmin,
		Content:        content,
	}
	var customerID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		conversation, err := repo.FindConversationForUpdate(conversationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConversationMissing
			}
			return err
		}
		customerID = conversation.UserID
		if err := repo.CreateMessage(message); err != nil {
			return err
		}
		return repo.RecordMessage(conversationID, preview(content), message.CreatedAt, model.SenderRoleAdmin)
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		logger.Error("Failed to send admin reply", err, map[string]interface{}{
			"conversation_id": conversationID,
			"admin_id":        adminID,
		})
		return nil, apperrors.Upstream(err, "chat")
	}

	event := ChatEvent{ConversationID: conversationID, UserID: customerID, Message: message}
	s.publisher.PublishToUser(customerID, EventChatMessage, event)
	s.publisher.PublishToAdmins(EventChatMessage, event)
	return message, nil
}

func (s *chatService) MarkReadByAdmin(conversationID uint) error {
	if err := s.repo.MarkRead(conversationID, model.SenderRoleAdmin); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConversationMissing
		}
		return apperrors.Upstream(err, "chat")
	}
	return nil
}
