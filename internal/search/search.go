// Package search runs full-text queries over posts and users using the
// store's text-search ranking. Scores are derived per query, never stored.
package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wyejay/MedPeer/pkg/logging"
	"github.com/wyejay/MedPeer/pkg/telemetry"
)

// Type selects which content types a search covers
type Type string

// Content type selectors
const (
	TypeAll   Type = "all"
	TypePosts Type = "posts"
	TypeUsers Type = "users"
)

// ParseType maps a raw selector string to a Type. Unknown values are
// reported via ok=false; callers treat them as "no results", not an error.
func ParseType(raw string) (Type, bool) {
	switch Type(raw) {
	case TypeAll, TypePosts, TypeUsers:
		return Type(raw), true
	case "":
		return TypeAll, true
	}
	return "", false
}

// Result is one ranked search hit, tagged with its origin type
type Result struct {
	Type      string    `json:"type"`
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	OwnerName string    `json:"owner_name"`
	CreatedAt time.Time `json:"created_at"`
	Relevance float64   `json:"relevance"`
}

// Service executes search queries against the relational store
type Service struct {
	db     *gorm.DB
	limit  int
	logger *zap.Logger
}

// NewService creates a search service. limit bounds each type's result block.
func NewService(database *gorm.DB, limit int) *Service {
	if limit <= 0 {
		limit = 20
	}
	return &Service{
		db:     database,
		limit:  limit,
		logger: logging.GetLogger().With(zap.String("component", "search")),
	}
}

type resultRow struct {
	ID        int64     `gorm:"column:id"`
	Title     string    `gorm:"column:title"`
	Excerpt   string    `gorm:"column:excerpt"`
	OwnerName string    `gorm:"column:owner_name"`
	CreatedAt time.Time `gorm:"column:created_at"`
	Relevance float64   `gorm:"column:relevance"`
}

// Search returns ranked results for the query. Each selected type produces
// its own block sorted by descending relevance; for TypeAll the post block
// precedes the user block with no cross-type re-ranking. A blank query or an
// unknown selector yields an empty result set rather than an error.
func (s *Service) Search(ctx context.Context, query string, typ Type) ([]Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "search.query")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}, nil
	}

	results := []Result{}

	switch typ {
	case TypePosts:
		return s.searchPosts(ctx, query)
	case TypeUsers:
		return s.searchUsers(ctx, query)
	case TypeAll:
		posts, err := s.searchPosts(ctx, query)
		if err != nil {
			return nil, err
		}
		users, err := s.searchUsers(ctx, query)
		if err != nil {
			return nil, err
		}
		results = append(results, posts...)
		results = append(results, users...)
		return results, nil
	}

	// Unknown selector: no rows, mirroring the store-procedure default branch
	return results, nil
}

// searchPosts ranks non-deleted posts against the query over title and body
func (s *Service) searchPosts(ctx context.Context, query string) ([]Result, error) {
	var rows []resultRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT posts.id,
		       posts.title,
		       LEFT(posts.body, 200) AS excerpt,
		       (users.first_name || ' ' || users.last_name) AS owner_name,
		       posts.created_at,
		       ts_rank(to_tsvector('english', posts.title || ' ' || posts.body),
		               plainto_tsquery('english', ?)) AS relevance
		FROM posts
		INNER JOIN users ON users.id = posts.user_id
		WHERE posts.is_deleted = FALSE
		  AND to_tsvector('english', posts.title || ' ' || posts.body) @@ plainto_tsquery('english', ?)
		ORDER BY relevance DESC
		LIMIT ?`, query, query, s.limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return tagResults(rows, string(TypePosts)), nil
}

// searchUsers ranks active users against the query over name and username.
// The excerpt is the bio, falling back to specialty, falling back to empty.
func (s *Service) searchUsers(ctx context.Context, query string) ([]Result, error) {
	var rows []resultRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT users.id,
		       (users.first_name || ' ' || users.last_name) AS title,
		       COALESCE(NULLIF(users.bio, ''), users.specialty, '') AS excerpt,
		       users.username AS owner_name,
		       users.created_at,
		       ts_rank(to_tsvector('simple', users.first_name || ' ' || users.last_name || ' ' || users.username),
		               plainto_tsquery('simple', ?)) AS relevance
		FROM users
		WHERE users.is_active = TRUE
		  AND to_tsvector('simple', users.first_name || ' ' || users.last_name || ' ' || users.username) @@ plainto_tsquery('simple', ?)
		ORDER BY relevance DESC
		LIMIT ?`, query, query, s.limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return tagResults(rows, string(TypeUsers)), nil
}

func tagResults(rows []resultRow, typ string) []Result {
	results := make([]Result, len(rows))
	for i, row := range rows {
		results[i] = Result{
			Type:      typ,
			ID:        row.ID,
			Title:     row.Title,
			Excerpt:   row.Excerpt,
			OwnerName: row.OwnerName,
			CreatedAt: row.CreatedAt,
			Relevance: row.Relevance,
		}
	}
	return results
}
