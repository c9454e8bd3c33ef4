// Package feed assembles the reverse-chronological timeline a user sees:
// their own posts plus the posts of every account they follow.
package feed

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wyejay/MedPeer/internal/models"
	"github.com/wyejay/MedPeer/pkg/logging"
	"github.com/wyejay/MedPeer/pkg/telemetry"
)

// PostSummary is one feed entry: a post annotated with author identity
// and a live comment count.
type PostSummary struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	PostType       string    `json:"post_type"`
	AuthorID       int64     `json:"author_id"`
	AuthorName     string    `json:"author_name"`
	AuthorUsername string    `json:"author_username"`
	CreatedAt      time.Time `json:"created_at"`
	Likes          int64     `json:"likes"`
	CommentCount   int64     `json:"comment_count"`
}

// Service builds feeds against the relational store. It holds no state
// beyond the connection and limit bounds; every call is an independent read.
type Service struct {
	db           *gorm.DB
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

// NewService creates a feed service
func NewService(database *gorm.DB, defaultLimit, maxLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &Service{
		db:           database,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logging.GetLogger().With(zap.String("component", "feed")),
	}
}

// feedRow is the raw scan target for the feed query
type feedRow struct {
	ID           int64     `gorm:"column:id"`
	Title        string    `gorm:"column:title"`
	Body         string    `gorm:"column:body"`
	PostType     string    `gorm:"column:post_type"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	Likes        int64     `gorm:"column:likes"`
	AuthorID     int64     `gorm:"column:author_id"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	Username     string    `gorm:"column:username"`
	CommentCount int64     `gorm:"column:comment_count"`
}

// Assemble returns the feed for the requesting user: posts authored by the
// requester or by any account they follow, soft-deleted posts excluded,
// newest first, truncated to limit. Comment counts exclude soft-deleted
// comments. A user with no posts and no follows gets an empty slice.
func (s *Service) Assemble(ctx context.Context, requesterID int64, limit int) ([]PostSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.assemble")
	defer span.End()

	limit = s.clampLimit(limit)

	followed := s.db.Model(&models.Follow{}).
		Select("followed_id").
		Where("follower_id = ?", requesterID)

	var rows []feedRow
	err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(`posts.id, posts.title, posts.body, posts.post_type, posts.created_at, posts.likes,
			users.id AS author_id, users.first_name, users.last_name, users.username,
			(SELECT COUNT(*) FROM comments
			 WHERE comments.post_id = posts.id AND comments.is_deleted = ?) AS comment_count`, false).
		Joins("INNER JOIN users ON users.id = posts.user_id").
		Where("posts.is_deleted = ?", false).
		Where("posts.user_id = ? OR posts.user_id IN (?)", requesterID, followed).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]PostSummary, len(rows))
	for i, row := range rows {
		summaries[i] = PostSummary{
			ID:             row.ID,
			Title:          row.Title,
			Body:           row.Body,
			PostType:       row.PostType,
			AuthorID:       row.AuthorID,
			AuthorName:     strings.TrimSpace(row.FirstName + " " + row.LastName),
			AuthorUsername: row.Username,
			CreatedAt:      row.CreatedAt,
			Likes:          row.Likes,
			CommentCount:   row.CommentCount,
		}
	}

	return summaries, nil
}

// clampLimit normalizes the page size: non-positive values fall back to the
// default, oversized values are capped.
func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}
