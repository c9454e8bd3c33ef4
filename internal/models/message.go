package models

import (
	"database/sql"
	"time"
)

// Message represents a direct message between two users
type Message struct {
	ID          int64  `gorm:"primaryKey;autoIncrement;column:id"`
	SenderID    int64  `gorm:"not null;index;column:sender_id"`
	RecipientID int64  `gorm:"not null;index;column:recipient_id"`
	Body        string `gorm:"type:text;not null;column:body"`

	IsRead    bool         `gorm:"not null;default:false;column:is_read"`
	ReadAt    sql.NullTime `gorm:"column:read_at"`
	CreatedAt time.Time    `gorm:"not null;index;column:created_at"`

	// Relationships
	Sender    *User `gorm:"foreignKey:SenderID;references:ID"`
	Recipient *User `gorm:"foreignKey:RecipientID;references:ID"`
}

// TableName specifies the table name for Message
func (Message) TableName() string {
	return "messages"
}
