package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wyejay/MedPeer/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps the in-memory database alive for the test
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.org",
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     username,
		Role:         models.RoleStudent,
		PrivacyLevel: models.PrivacyPublic,
		IsActive:     true,
		LastSeen:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createPost(t *testing.T, db *gorm.DB, author *models.User, title string, createdAt time.Time, deleted bool) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:    author.ID,
		Title:     title,
		Body:      "body of " + title,
		PostType:  models.PostTypeNote,
		IsDeleted: deleted,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func createComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User, deleted bool) {
	t.Helper()
	comment := &models.Comment{
		PostID:    post.ID,
		UserID:    author.ID,
		Body:      "a comment",
		IsDeleted: deleted,
	}
	require.NoError(t, db.Create(comment).Error)
}

func follow(t *testing.T, db *gorm.DB, follower, followed *models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.Follow{
		FollowerID: follower.ID,
		FollowedID: followed.ID,
		CreatedAt:  time.Now().UTC(),
	}).Error)
}

func TestAssemble_EmptyForNewUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, 20, 100)

	user := createUser(t, db, "lonely")

	posts, err := svc.Assemble(context.Background(), user.ID, 20)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestAssemble_OwnPostsWithoutFollows(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, 20, 100)

	user := createUser(t, db, "solo")
	createPost(t, db, user, "mine", time.Now().UTC(), false)

	posts, err := svc.Assemble(context.Background(), user.ID, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "mine", posts[0].Title)
	assert.Equal(t, user.ID, posts[0].AuthorID)
	assert.Equal(t, "solo", posts[0].AuthorUsername)
}

func TestAssemble_FollowedPostsExcludeSoftDeleted(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, 20, 100)

	userA := createUser(t, db, "alice")
	userB := createUser(t, db, "bob")
	follow(t, db, userA, userB)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createPost(t, db, userB, "older", base, false)
	createPost(t, db, userB, "newer", base.Add(time.Hour), false)
	createPost(t, db, userB, "gone", base.Add(2*time.Hour), true)

	posts, err := svc.Assemble(context.Background(), userA.ID, 20)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Title)
	assert.Equal(t, "older", posts[1].Title)
}

func TestAssemble_DoesNotIncludeUnfollowedAuthors(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, 20, 100)

	userA := createUser(t, db, "reader")
	stranger := createUser(t, db, "stranger")
	createPost(t, db, stranger, "invisible", time.Now().UTC(), false)

	posts, err := svc.Assemble(context.Background(), userA.ID, 20)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestAssemble_CommentCountExcludesDeleted(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, 20, 100)

	user := createUser(t, db, "author")
	post := createPost(t, db, user, "counted", time.Now().UTC(), false)
	createComment(t, db, post, user, false)
	createComment(t, db, post, user, false)
	createComment(t, db, post, user, true)

	posts, err := svc.Assemble(context.Background(), user.ID, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(2), posts[0].CommentCount)
}

func TestAssemble_OrderNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, 20, 100)

	user := createUser(t, db, "writer")
	base := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		createPost(t, db, user, fmt.Sprintf("post-%d", i), base.Add(time.Duration(i)*time.Minute), false)
	}

	posts, err := svc.Assemble(context.Background(), user.ID, 20)
	require.NoError(t, err)
	require.Len(t, posts, 5)
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt),
			"feed must be ordered by creation time descending")
	}
}

func TestAssemble_LimitClamping(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, 2, 3)

	user := createUser(t, db, "prolific")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		createPost(t, db, user, fmt.Sprintf("p-%d", i), base.Add(time.Duration(i)*time.Hour), false)
	}

	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"zero falls back to default", 0, 2},
		{"negative falls back to default", -7, 2},
		{"above max is capped", 50, 3},
		{"in range is honored", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := svc.Assemble(context.Background(), user.ID, tt.limit)
			require.NoError(t, err)
			assert.Len(t, posts, tt.expected)
		})
	}
}
