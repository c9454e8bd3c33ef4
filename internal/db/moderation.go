package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyejay/MedPeer/internal/models"
)

// AttachmentRepository provides attachment database operations
type AttachmentRepository struct {
	*Repository
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(repo *Repository) *AttachmentRepository {
	return &AttachmentRepository{Repository: repo}
}

// Create stores attachment metadata
func (r *AttachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

// GetByID retrieves an attachment by ID. Deleted attachments are not returned.
func (r *AttachmentRepository) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		First(&attachment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attachment, nil
}

// GetByHash retrieves an attachment by its content hash, for deduplication
func (r *AttachmentRepository) GetByHash(ctx context.Context, hash string) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := r.db.WithContext(ctx).
		Where("content_hash = ? AND is_deleted = ?", hash, false).
		First(&attachment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attachment, nil
}

// IncrementDownloads bumps the download counter
func (r *AttachmentRepository) IncrementDownloads(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Attachment{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error
}

// FlagRepository provides content-flag database operations
type FlagRepository struct {
	*Repository
}

// NewFlagRepository creates a new flag repository
func NewFlagRepository(repo *Repository) *FlagRepository {
	return &FlagRepository{Repository: repo}
}

// Create stores a new content flag
func (r *FlagRepository) Create(ctx context.Context, flag *models.ContentFlag) error {
	return r.db.WithContext(ctx).Create(flag).Error
}

// GetByID retrieves a flag by ID
func (r *FlagRepository) GetByID(ctx context.Context, id int64) (*models.ContentFlag, error) {
	var flag models.ContentFlag
	if err := r.db.WithContext(ctx).First(&flag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &flag, nil
}

// List retrieves flags, optionally filtered by status, newest first
func (r *FlagRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.ContentFlag, error) {
	query := r.db.WithContext(ctx).Model(&models.ContentFlag{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var flags []*models.ContentFlag
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&flags).Error
	if err != nil {
		return nil, err
	}
	return flags, nil
}

// Update updates a flag
func (r *FlagRepository) Update(ctx context.Context, flag *models.ContentFlag) error {
	return r.db.WithContext(ctx).Save(flag).Error
}
