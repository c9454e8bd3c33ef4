package search

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock
}

func resultColumns() []string {
	return []string{"id", "title", "excerpt", "owner_name", "created_at", "relevance"}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Type
		ok       bool
	}{
		{"all", "all", TypeAll, true},
		{"posts", "posts", TypePosts, true},
		{"users", "users", TypeUsers, true},
		{"empty defaults to all", "", TypeAll, true},
		{"unknown", "files", "", false},
		{"garbage", "POSTS", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, ok := ParseType(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, typ)
			}
		})
	}
}

func TestSearch_BlankQueryReturnsEmpty(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewService(db, 20)

	for _, q := range []string{"", "   ", "\t\n"} {
		for _, typ := range []Type{TypeAll, TypePosts, TypeUsers} {
			results, err := svc.Search(context.Background(), q, typ)
			require.NoError(t, err)
			assert.Empty(t, results)
		}
	}

	// no query should have reached the store
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_UnknownTypeReturnsEmpty(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewService(db, 20)

	results, err := svc.Search(context.Background(), "cardiology", Type("files"))
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_Posts(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewService(db, 20)

	created := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`ts_rank\(to_tsvector\('english', posts\.title`).
		WithArgs("cardiology", "cardiology", 20).
		WillReturnRows(sqlmock.NewRows(resultColumns()).
			AddRow(7, "Cardiology rounds", "Notes from cardiology...", "Ada Okafor", created, 0.61).
			AddRow(3, "ECG basics", "One mention of cardiology", "Ben Mensah", created, 0.12))

	results, err := svc.Search(context.Background(), "cardiology", TypePosts)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "posts", results[0].Type)
	assert.Equal(t, int64(7), results[0].ID)
	assert.Equal(t, "Cardiology rounds", results[0].Title)
	assert.Equal(t, "Ada Okafor", results[0].OwnerName)
	assert.GreaterOrEqual(t, results[0].Relevance, results[1].Relevance,
		"post blocks must be ordered by descending relevance")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_Users(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewService(db, 20)

	created := time.Date(2025, 11, 2, 16, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`ts_rank\(to_tsvector\('simple', users\.first_name`).
		WithArgs("okafor", "okafor", 20).
		WillReturnRows(sqlmock.NewRows(resultColumns()).
			AddRow(11, "Ada Okafor", "Cardiology registrar", "ada_okafor", created, 0.4))

	results, err := svc.Search(context.Background(), "okafor", TypeUsers)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "users", results[0].Type)
	assert.Equal(t, "Ada Okafor", results[0].Title)
	assert.Equal(t, "Cardiology registrar", results[0].Excerpt)
	assert.Equal(t, "ada_okafor", results[0].OwnerName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_AllConcatenatesBlocks(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewService(db, 20)

	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	// posts block first
	mock.ExpectQuery(`ts_rank\(to_tsvector\('english', posts\.title`).
		WithArgs("anatomy", "anatomy", 20).
		WillReturnRows(sqlmock.NewRows(resultColumns()).
			AddRow(1, "Anatomy lab", "excerpt", "Ada Okafor", created, 0.2))

	// users block second; ranks are not comparable across blocks and the
	// blocks are concatenated without re-sorting
	mock.ExpectQuery(`ts_rank\(to_tsvector\('simple', users\.first_name`).
		WithArgs("anatomy", "anatomy", 20).
		WillReturnRows(sqlmock.NewRows(resultColumns()).
			AddRow(2, "Anatomy Teach", "bio", "anatomy_teach", created, 0.9))

	results, err := svc.Search(context.Background(), "anatomy", TypeAll)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "posts", results[0].Type)
	assert.Equal(t, "users", results[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_EmptyBlocksAreNotErrors(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewService(db, 20)

	mock.ExpectQuery(`ts_rank\(to_tsvector\('english', posts\.title`).
		WithArgs("xylophone", "xylophone", 20).
		WillReturnRows(sqlmock.NewRows(resultColumns()))

	results, err := svc.Search(context.Background(), "xylophone", TypePosts)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}
