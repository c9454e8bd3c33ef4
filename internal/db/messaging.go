package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/wyejay/MedPeer/internal/models"
)

// MessageRepository provides direct-message database operations
type MessageRepository struct {
	*Repository
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(repo *Repository) *MessageRepository {
	return &MessageRepository{Repository: repo}
}

// Create stores a new message
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// Thread retrieves the messages between two users, oldest first
func (r *MessageRepository) Thread(ctx context.Context, userA, userB int64, limit, offset int) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkThreadRead marks unread messages sent by senderID to recipientID as read
func (r *MessageRepository) MarkThreadRead(ctx context.Context, senderID, recipientID int64) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", senderID, recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

// Conversations returns the latest message of each conversation the user
// participates in, newest first. A conversation is keyed by the unordered
// participant pair.
func (r *MessageRepository) Conversations(ctx context.Context, userID int64, limit int) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).Raw(`
		SELECT m.* FROM messages m
		INNER JOIN (
			SELECT LEAST(sender_id, recipient_id) AS lo,
			       GREATEST(sender_id, recipient_id) AS hi,
			       MAX(created_at) AS latest
			FROM messages
			WHERE sender_id = ? OR recipient_id = ?
			GROUP BY LEAST(sender_id, recipient_id), GREATEST(sender_id, recipient_id)
		) t ON LEAST(m.sender_id, m.recipient_id) = t.lo
		   AND GREATEST(m.sender_id, m.recipient_id) = t.hi
		   AND m.created_at = t.latest
		ORDER BY m.created_at DESC
		LIMIT ?`, userID, userID, limit).
		Scan(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Search finds messages in the user's own threads whose body matches the
// query, newest first. The match is a case-insensitive substring.
func (r *MessageRepository) Search(ctx context.Context, userID int64, query string, limit int) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Where("LOWER(body) LIKE LOWER(?)", "%"+query+"%").
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// UnreadCount counts unread messages addressed to the user
func (r *MessageRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// NotificationRepository provides notification database operations
type NotificationRepository struct {
	*Repository
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(repo *Repository) *NotificationRepository {
	return &NotificationRepository{Repository: repo}
}

// Create stores a new notification
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// ListByUser retrieves a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

// MarkRead marks a single notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

// MarkAllRead marks every unread notification of a user as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// UnreadCount counts unread notifications for a user
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
