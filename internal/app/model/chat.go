package model

import (
	"time"
)

type SenderRole string

const (
	SenderRoleUser  SenderRole = "user"
	SenderRoleAdmin SenderRole = "admin"
)

// Conversation is the single support thread between a customer and the
// store staff. The Last* and Unread* fields are denormalized and rewritten in
// the same transaction that appends each Message.
type Conversation struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	UserID        uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	LastMessage   string     `gorm:"type:text" json:"last_message"`
	LastMessageAt *time.Time `gorm:"index" json:"last_message_at,omitempty"`
	UnreadByAdmin bool       `gorm:"default:false;index" json:"unread_by_admin"`
	UnreadByUser  bool       `gorm:"default:false" json:"unread_by_user"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message is append-only.
type Message struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	ConversationID uint       `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint       `gorm:"not null" json:"sender_id"`
	SenderRole     SenderRole `gorm:"type:varchar(10);not null" json:"sender_role"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
