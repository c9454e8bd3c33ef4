package models

import (
	"time"
)

// Comment represents a comment on a post
type Comment struct {
	ID     int64  `gorm:"primaryKey;autoIncrement;column:id"`
	PostID int64  `gorm:"not null;index;column:post_id"`
	UserID int64  `gorm:"not null;index;column:user_id"`
	Body   string `gorm:"type:text;not null;column:body"`

	IsFlagged bool `gorm:"not null;default:false;column:is_flagged"`
	IsDeleted bool `gorm:"not null;default:false;column:is_deleted"`

	CreatedAt time.Time `gorm:"not null;index;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	// Relationships
	Post   *Post `gorm:"foreignKey:PostID;references:ID"`
	Author *User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
