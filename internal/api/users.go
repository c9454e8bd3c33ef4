package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wyejay/MedPeer/internal/models"
)

// getUserProfile returns a user's public profile with follow counts
func (r *Router) getUserProfile(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := r.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load user")
		return
	}
	if user == nil || !user.IsActive {
		abortWithError(c, http.StatusNotFound, "user not found")
		return
	}

	followers, following, err := r.follows.Counts(ctx, user.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load follow counts")
		return
	}

	isFollowing, err := r.follows.Exists(ctx, currentUserID(c), user.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load follow state")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         newUserResponse(user),
		"followers":    followers,
		"following":    following,
		"is_following": isFollowing,
	})
}

type updateProfileRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Bio          *string `json:"bio"`
	Institution  *string `json:"institution"`
	YearLevel    *string `json:"year_level"`
	Specialty    *string `json:"specialty"`
	Location     *string `json:"location"`
	Website      *string `json:"website"`
	PrivacyLevel *string `json:"privacy_level"`
}

// updateProfile applies partial updates to the authenticated user's profile
func (r *Router) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := c.Request.Context()
	user, err := r.users.GetByID(ctx, currentUserID(c))
	if err != nil || user == nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load user")
		return
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = nullString(*req.Bio)
	}
	if req.Institution != nil {
		user.Institution = nullString(*req.Institution)
	}
	if req.YearLevel != nil {
		user.YearLevel = nullString(*req.YearLevel)
	}
	if req.Specialty != nil {
		user.Specialty = nullString(*req.Specialty)
	}
	if req.Location != nil {
		user.Location = nullString(*req.Location)
	}
	if req.Website != nil {
		user.Website = nullString(*req.Website)
	}
	if req.PrivacyLevel != nil {
		switch *req.PrivacyLevel {
		case models.PrivacyPublic, models.PrivacyFollowers, models.PrivacyPrivate:
			user.PrivacyLevel = *req.PrivacyLevel
		default:
			abortWithError(c, http.StatusUnprocessableEntity, "unknown privacy level")
			return
		}
	}
	user.UpdatedAt = time.Now().UTC()

	if err := r.users.Update(ctx, user); err != nil {
		r.logger.Error("failed to update profile", zap.Int64("user_id", user.ID), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

// followUser records a follow edge and notifies the followed user
func (r *Router) followUser(c *gin.Context) {
	ctx := c.Request.Context()
	followerID := currentUserID(c)

	target, err := r.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load user")
		return
	}
	if target == nil || !target.IsActive {
		abortWithError(c, http.StatusNotFound, "user not found")
		return
	}
	if target.ID == followerID {
		abortWithError(c, http.StatusUnprocessableEntity, "cannot follow yourself")
		return
	}

	exists, err := r.follows.Exists(ctx, followerID, target.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load follow state")
		return
	}
	if exists {
		abortWithError(c, http.StatusConflict, "already following")
		return
	}

	follow := &models.Follow{
		FollowerID: followerID,
		FollowedID: target.ID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.follows.Create(ctx, follow); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to follow")
		return
	}

	r.notify(ctx, target.ID, models.NotifyTypeFollow,
		fmt.Sprintf("@%s started following you", r.usernameOf(ctx, followerID)),
		sql.NullInt64{}, sql.NullInt64{Int64: followerID, Valid: true})

	c.JSON(http.StatusCreated, gin.H{"following": true})
}

// unfollowUser removes a follow edge
func (r *Router) unfollowUser(c *gin.Context) {
	ctx := c.Request.Context()

	target, err := r.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load user")
		return
	}
	if target == nil {
		abortWithError(c, http.StatusNotFound, "user not found")
		return
	}

	if err := r.follows.Delete(ctx, currentUserID(c), target.ID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to unfollow")
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": false})
}

// getSuggestedUsers returns active users the requester does not follow yet
func (r *Router) getSuggestedUsers(c *gin.Context) {
	users, err := r.users.Suggested(c.Request.Context(), currentUserID(c), 10)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load suggestions")
		return
	}

	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = newUserResponse(u)
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// notify stores an in-app notification, logging rather than failing the
// request when the write does not land.
func (r *Router) notify(ctx context.Context, userID int64, notifyType, message string, relatedPost, relatedUser sql.NullInt64) {
	n := &models.Notification{
		UserID:        userID,
		Message:       message,
		Type:          notifyType,
		RelatedPostID: relatedPost,
		RelatedUserID: relatedUser,
		CreatedAt:     time.Now().UTC(),
	}
	if err := r.notifications.Create(ctx, n); err != nil {
		r.logger.Warn("failed to create notification",
			zap.Int64("user_id", userID), zap.String("type", notifyType), zap.Error(err))
		return
	}
	r.cache.InvalidateUnreadCount("notifications", userID)
}

// usernameOf resolves a user id to a username for notification text
func (r *Router) usernameOf(ctx context.Context, id int64) string {
	user, err := r.users.GetByID(ctx, id)
	if err != nil || user == nil {
		return "someone"
	}
	return user.Username
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
