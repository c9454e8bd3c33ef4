package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyejay/MedPeer/internal/models"
)

// notificationResponse is the public shape of a notification
type notificationResponse struct {
	ID            int64     `json:"id"`
	Message       string    `json:"message"`
	Type          string    `json:"type"`
	RelatedPostID int64     `json:"related_post_id,omitempty"`
	RelatedUserID int64     `json:"related_user_id,omitempty"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

func newNotificationResponse(n *models.Notification) notificationResponse {
	return notificationResponse{
		ID:            n.ID,
		Message:       n.Message,
		Type:          n.Type,
		RelatedPostID: n.RelatedPostID.Int64,
		RelatedUserID: n.RelatedUserID.Int64,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
	}
}

// listNotifications returns the requester's notifications, newest first
func (r *Router) listNotifications(c *gin.Context) {
	limit, offset := pagination(c, 20, 100)

	notifications, err := r.notifications.ListByUser(c.Request.Context(), currentUserID(c), limit, offset)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load notifications")
		return
	}

	out := make([]notificationResponse, len(notifications))
	for i, n := range notifications {
		out[i] = newNotificationResponse(n)
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

// markNotificationRead marks one of the requester's notifications as read.
// Another user's notification is reported as not found, not forbidden.
func (r *Router) markNotificationRead(c *gin.Context) {
	notificationID, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID := currentUserID(c)

	notification, err := r.notifications.GetByID(ctx, notificationID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load notification")
		return
	}
	if notification == nil || notification.UserID != userID {
		abortWithError(c, http.StatusNotFound, "notification not found")
		return
	}

	if err := r.notifications.MarkRead(ctx, notification.ID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	r.cache.InvalidateUnreadCount("notifications", userID)

	c.JSON(http.StatusOK, gin.H{"read": true})
}

// markAllNotificationsRead marks every unread notification as read
func (r *Router) markAllNotificationsRead(c *gin.Context) {
	userID := currentUserID(c)

	if err := r.notifications.MarkAllRead(c.Request.Context(), userID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}
	r.cache.InvalidateUnreadCount("notifications", userID)

	c.JSON(http.StatusOK, gin.H{"read": true})
}

// notificationUnreadCount returns the requester's unread notification count,
// served from cache when fresh
func (r *Router) notificationUnreadCount(c *gin.Context) {
	userID := currentUserID(c)

	if count, ok := r.cache.GetUnreadCount("notifications", userID); ok {
		c.JSON(http.StatusOK, gin.H{"unread": count})
		return
	}

	count, err := r.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to count notifications")
		return
	}
	r.cache.SetUnreadCount("notifications", userID, count)

	c.JSON(http.StatusOK, gin.H{"unread": count})
}
