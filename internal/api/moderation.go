package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wyejay/MedPeer/internal/models"
)

type createFlagRequest struct {
	Reason      string `json:"reason" binding:"required,max=100"`
	Description string `json:"description"`
}

// flagResponse is the public shape of a content flag
type flagResponse struct {
	ID          int64     `json:"id"`
	ReporterID  int64     `json:"reporter_id"`
	PostID      int64     `json:"post_id,omitempty"`
	CommentID   int64     `json:"comment_id,omitempty"`
	UserID      int64     `json:"user_id,omitempty"`
	Reason      string    `json:"reason"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func newFlagResponse(f *models.ContentFlag) flagResponse {
	return flagResponse{
		ID:          f.ID,
		ReporterID:  f.ReporterID,
		PostID:      f.PostID.Int64,
		CommentID:   f.CommentID.Int64,
		UserID:      f.UserID.Int64,
		Reason:      f.Reason,
		Description: f.Description.String,
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
	}
}

// flagPost files a report against a post
func (r *Router) flagPost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req createFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := c.Request.Context()
	post, err := r.posts.GetByID(ctx, postID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load post")
		return
	}
	if post == nil {
		abortWithError(c, http.StatusNotFound, "post not found")
		return
	}

	r.fileFlag(c, &req, sql.NullInt64{Int64: post.ID, Valid: true}, sql.NullInt64{})
}

// flagComment files a report against a comment
func (r *Router) flagComment(c *gin.Context) {
	commentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req createFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := c.Request.Context()
	comment, err := r.comments.GetByID(ctx, commentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load comment")
		return
	}
	if comment == nil {
		abortWithError(c, http.StatusNotFound, "comment not found")
		return
	}

	r.fileFlag(c, &req, sql.NullInt64{}, sql.NullInt64{Int64: comment.ID, Valid: true})
}

func (r *Router) fileFlag(c *gin.Context, req *createFlagRequest, postID, commentID sql.NullInt64) {
	flag := &models.ContentFlag{
		ReporterID:  currentUserID(c),
		PostID:      postID,
		CommentID:   commentID,
		Reason:      req.Reason,
		Description: nullString(req.Description),
		Status:      models.FlagStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.flags.Create(c.Request.Context(), flag); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to create flag")
		return
	}

	c.JSON(http.StatusCreated, newFlagResponse(flag))
}

// listFlags returns reports for moderator review, optionally by status
func (r *Router) listFlags(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", models.FlagStatusPending, models.FlagStatusReviewed, models.FlagStatusDismissed, models.FlagStatusActed:
	default:
		abortWithError(c, http.StatusUnprocessableEntity, "unknown status")
		return
	}

	limit, offset := pagination(c, 50, 200)
	flags, err := r.flags.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load flags")
		return
	}

	out := make([]flagResponse, len(flags))
	for i, f := range flags {
		out[i] = newFlagResponse(f)
	}
	c.JSON(http.StatusOK, gin.H{"flags": out})
}

type reviewFlagRequest struct {
	Status string `json:"status" binding:"required"`
}

// reviewFlag resolves a report. Acting on a flag marks the target content
// as flagged so it can be queued for removal.
func (r *Router) reviewFlag(c *gin.Context) {
	flagID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req reviewFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	switch req.Status {
	case models.FlagStatusReviewed, models.FlagStatusDismissed, models.FlagStatusActed:
	default:
		abortWithError(c, http.StatusUnprocessableEntity, "unknown status")
		return
	}

	ctx := c.Request.Context()
	flag, err := r.flags.GetByID(ctx, flagID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load flag")
		return
	}
	if flag == nil {
		abortWithError(c, http.StatusNotFound, "flag not found")
		return
	}

	flag.Status = req.Status
	flag.ReviewedBy = sql.NullInt64{Int64: currentUserID(c), Valid: true}
	flag.ReviewedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	if err := r.flags.Update(ctx, flag); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to update flag")
		return
	}

	if req.Status == models.FlagStatusActed {
		if flag.PostID.Valid {
			if err := r.db.Model(&models.Post{}).
				Where("id = ?", flag.PostID.Int64).
				Update("is_flagged", true).Error; err != nil {
				r.logger.Warn("failed to mark post flagged", zap.Int64("post_id", flag.PostID.Int64), zap.Error(err))
			}
		}
		if flag.CommentID.Valid {
			if err := r.db.Model(&models.Comment{}).
				Where("id = ?", flag.CommentID.Int64).
				Update("is_flagged", true).Error; err != nil {
				r.logger.Warn("failed to mark comment flagged", zap.Int64("comment_id", flag.CommentID.Int64), zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, newFlagResponse(flag))
}
