package api

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wyejay/MedPeer/internal/files"
	"github.com/wyejay/MedPeer/internal/models"
)

// uploadFile stores a multipart upload and records its metadata. Uploads
// with a content hash already on record reuse the existing file on disk.
func (r *Router) uploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "missing file field")
		return
	}
	if !files.Allowed(header.Filename) {
		abortWithError(c, http.StatusUnprocessableEntity, "file type not allowed")
		return
	}
	if header.Size > r.cfg.Uploads.MaxSizeBytes {
		abortWithError(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	src, err := header.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "failed to read upload")
		return
	}
	defer src.Close()

	saved, err := r.store.Save(header.Filename, src, header.Size)
	if err != nil {
		r.logger.Warn("failed to store upload", zap.String("filename", header.Filename), zap.Error(err))
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := c.Request.Context()

	// Duplicate content keeps a single file on disk
	if existing, err := r.attachments.GetByHash(ctx, saved.ContentHash); err == nil && existing != nil {
		os.Remove(saved.Path)
		saved.Filename = existing.Filename
		saved.Path = existing.Path
	}

	attachment := &models.Attachment{
		UserID:           currentUserID(c),
		Filename:         saved.Filename,
		OriginalFilename: header.Filename,
		Path:             saved.Path,
		SizeBytes:        saved.SizeBytes,
		MimeType:         header.Header.Get("Content-Type"),
		ContentHash:      saved.ContentHash,
		ScanResult:       models.ScanPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := r.attachments.Create(ctx, attachment); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to record upload")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":                attachment.ID,
		"filename":          attachment.Filename,
		"original_filename": attachment.OriginalFilename,
		"size_bytes":        attachment.SizeBytes,
		"content_hash":      attachment.ContentHash,
	})
}

// downloadFile streams a stored attachment back under its original name
func (r *Router) downloadFile(c *gin.Context) {
	attachmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	attachment, err := r.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load attachment")
		return
	}
	if attachment == nil {
		abortWithError(c, http.StatusNotFound, "attachment not found")
		return
	}
	if attachment.ScanResult == models.ScanInfected {
		abortWithError(c, http.StatusForbidden, "attachment quarantined")
		return
	}

	if err := r.attachments.IncrementDownloads(ctx, attachment.ID); err != nil {
		r.logger.Warn("failed to increment downloads", zap.Int64("attachment_id", attachment.ID), zap.Error(err))
	}

	c.FileAttachment(attachment.Path, attachment.OriginalFilename)
}
