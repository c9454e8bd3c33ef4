package models

import (
	"database/sql"
	"time"
)

// Attachment represents an uploaded file linked to a post or message
type Attachment struct {
	ID               int64  `gorm:"primaryKey;autoIncrement;column:id"`
	UserID           int64  `gorm:"not null;index;column:user_id"`
	PostID           sql.NullInt64 `gorm:"index;column:post_id"`
	MessageID        sql.NullInt64 `gorm:"index;column:message_id"`
	Filename         string `gorm:"type:varchar(255);not null;column:filename"`
	OriginalFilename string `gorm:"type:varchar(255);not null;column:original_filename"`
	Path             string `gorm:"type:varchar(500);not null;column:path"`
	SizeBytes        int64  `gorm:"not null;column:size_bytes"`
	MimeType         string `gorm:"type:varchar(100);not null;column:mime_type"`
	// SHA-256 of the file content, used for deduplication
	ContentHash string `gorm:"type:varchar(64);index;column:content_hash"`

	Downloads  int64  `gorm:"not null;default:0;column:downloads"`
	ScanResult string `gorm:"type:varchar(50);not null;default:'pending';column:scan_result"`
	IsDeleted  bool   `gorm:"not null;default:false;column:is_deleted"`

	CreatedAt time.Time `gorm:"not null;index;column:created_at"`

	// Relationships
	Uploader *User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}

// Attachment scan states
const (
	ScanPending  = "pending"
	ScanClean    = "clean"
	ScanInfected = "infected"
)
