package models

import (
	"time"
)

// Post represents a user-authored post
type Post struct {
	ID       int64  `gorm:"primaryKey;autoIncrement;column:id"`
	UserID   int64  `gorm:"not null;index;column:user_id"`
	Title    string `gorm:"type:varchar(200);not null;column:title"`
	Body     string `gorm:"type:text;not null;column:body"`
	PostType string `gorm:"type:varchar(20);not null;default:'note';column:post_type"`

	// Engagement
	Views int64 `gorm:"not null;default:0;column:views"`
	Likes int64 `gorm:"not null;default:0;column:likes"`

	// Status; "deletion" is a flag so aggregates and audit trails stay consistent
	IsFlagged bool `gorm:"not null;default:false;column:is_flagged"`
	IsDeleted bool `gorm:"not null;default:false;column:is_deleted"`

	CreatedAt time.Time `gorm:"not null;index;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	// Relationships
	Author *User `gorm:"foreignKey:UserID;references:ID"`
	Tags   []Tag `gorm:"many2many:post_tags;"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// Post type constants
const (
	PostTypeNote         = "note"
	PostTypeQuestion     = "question"
	PostTypeAnnouncement = "announcement"
	PostTypeResource     = "resource"
)

// Tag represents a topic tag attachable to posts
type Tag struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Name        string    `gorm:"type:varchar(50);not null;uniqueIndex:tags_ux_name;column:name"`
	Description string    `gorm:"type:varchar(200);column:description"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Tag
func (Tag) TableName() string {
	return "tags"
}
