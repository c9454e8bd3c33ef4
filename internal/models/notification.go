package models

import (
	"database/sql"
	"time"
)

// Notification represents an in-app notification
type Notification struct {
	ID      int64  `gorm:"primaryKey;autoIncrement;column:id"`
	UserID  int64  `gorm:"not null;index;column:user_id"`
	Message string `gorm:"type:varchar(500);not null;column:message"`
	Type    string `gorm:"type:varchar(50);not null;column:type"`

	RelatedPostID sql.NullInt64 `gorm:"column:related_post_id"`
	RelatedUserID sql.NullInt64 `gorm:"column:related_user_id"`

	IsRead    bool      `gorm:"not null;default:false;index;column:is_read"`
	CreatedAt time.Time `gorm:"not null;index;column:created_at"`

	// Relationships
	User        *User `gorm:"foreignKey:UserID;references:ID"`
	RelatedPost *Post `gorm:"foreignKey:RelatedPostID;references:ID"`
	RelatedUser *User `gorm:"foreignKey:RelatedUserID;references:ID"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// Notification type constants
const (
	NotifyTypeComment = "comment"
	NotifyTypeFollow  = "follow"
	NotifyTypeMessage = "message"
	NotifyTypeMention = "mention"
	NotifyTypeAdmin   = "admin"
)
