package models

import (
	"database/sql"
	"time"
)

// ContentFlag represents a user report against a post, comment or user
type ContentFlag struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id"`
	ReporterID  int64          `gorm:"not null;index;column:reporter_id"`
	PostID      sql.NullInt64  `gorm:"column:post_id"`
	CommentID   sql.NullInt64  `gorm:"column:comment_id"`
	UserID      sql.NullInt64  `gorm:"column:user_id"`
	Reason      string         `gorm:"type:varchar(100);not null;column:reason"`
	Description sql.NullString `gorm:"type:text;column:description"`

	Status     string        `gorm:"type:varchar(20);not null;default:'pending';column:status"`
	ReviewedBy sql.NullInt64 `gorm:"column:reviewed_by"`
	ReviewedAt sql.NullTime  `gorm:"column:reviewed_at"`

	CreatedAt time.Time `gorm:"not null;index;column:created_at"`

	// Relationships
	Reporter *User `gorm:"foreignKey:ReporterID;references:ID"`
}

// TableName specifies the table name for ContentFlag
func (ContentFlag) TableName() string {
	return "content_flags"
}

// Flag status constants
const (
	FlagStatusPending   = "pending"
	FlagStatusReviewed  = "reviewed"
	FlagStatusDismissed = "dismissed"
	FlagStatusActed     = "acted"
)
