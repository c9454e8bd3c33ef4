package api

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wyejay/MedPeer/internal/markdown"
	"github.com/wyejay/MedPeer/internal/models"
)

// messageResponse is the public shape of a direct message
type messageResponse struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	Body        string    `json:"body"`
	BodyHTML    string    `json:"body_html"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

func newMessageResponse(m *models.Message) messageResponse {
	return messageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Body:        m.Body,
		BodyHTML:    markdown.Render(m.Body),
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}

// listConversations returns the latest message of each conversation the
// requester participates in, newest first
func (r *Router) listConversations(c *gin.Context) {
	messages, err := r.messages.Conversations(c.Request.Context(), currentUserID(c), 20)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load conversations")
		return
	}

	out := make([]messageResponse, len(messages))
	for i, m := range messages {
		out[i] = newMessageResponse(m)
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

// getThread returns the message thread with another user, oldest first,
// and marks their messages to the requester as read
func (r *Router) getThread(c *gin.Context) {
	otherID, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID := currentUserID(c)

	other, err := r.users.GetByID(ctx, otherID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load user")
		return
	}
	if other == nil {
		abortWithError(c, http.StatusNotFound, "user not found")
		return
	}

	limit, offset := pagination(c, 50, 200)
	messages, err := r.messages.Thread(ctx, userID, other.ID, limit, offset)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load thread")
		return
	}

	// Opening the thread reads it
	if err := r.messages.MarkThreadRead(ctx, other.ID, userID); err != nil {
		r.logger.Warn("failed to mark thread read", zap.Int64("user_id", userID), zap.Error(err))
	} else {
		r.cache.InvalidateUnreadCount("messages", userID)
	}

	out := make([]messageResponse, len(messages))
	for i, m := range messages {
		out[i] = newMessageResponse(m)
	}
	c.JSON(http.StatusOK, gin.H{"messages": out, "with": newUserResponse(other)})
}

type sendMessageRequest struct {
	RecipientID int64  `json:"recipient_id" binding:"required"`
	Body        string `json:"body" binding:"required"`
}

// sendMessage stores a direct message and notifies the recipient
func (r *Router) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := c.Request.Context()
	senderID := currentUserID(c)

	recipient, err := r.users.GetByID(ctx, req.RecipientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load user")
		return
	}
	if recipient == nil || !recipient.IsActive {
		abortWithError(c, http.StatusNotFound, "user not found")
		return
	}
	if recipient.ID == senderID {
		abortWithError(c, http.StatusUnprocessableEntity, "cannot message yourself")
		return
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Body:        req.Body,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.messages.Create(ctx, message); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to send message")
		return
	}

	r.cache.InvalidateUnreadCount("messages", recipient.ID)
	r.notify(ctx, recipient.ID, models.NotifyTypeMessage,
		fmt.Sprintf("New message from @%s", r.usernameOf(ctx, senderID)),
		sql.NullInt64{}, sql.NullInt64{Int64: senderID, Valid: true})

	c.JSON(http.StatusCreated, newMessageResponse(message))
}

// searchMessages finds messages in the requester's own threads matching the
// query. A blank query yields an empty list.
func (r *Router) searchMessages(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"messages": []messageResponse{}})
		return
	}

	limit, _ := pagination(c, 20, 100)
	messages, err := r.messages.Search(c.Request.Context(), currentUserID(c), query, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to search messages")
		return
	}

	out := make([]messageResponse, len(messages))
	for i, m := range messages {
		out[i] = newMessageResponse(m)
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

// messageUnreadCount returns the requester's unread message count, served
// from cache when fresh
func (r *Router) messageUnreadCount(c *gin.Context) {
	userID := currentUserID(c)

	if count, ok := r.cache.GetUnreadCount("messages", userID); ok {
		c.JSON(http.StatusOK, gin.H{"unread": count})
		return
	}

	count, err := r.messages.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to count messages")
		return
	}
	r.cache.SetUnreadCount("messages", userID, count)

	c.JSON(http.StatusOK, gin.H{"unread": count})
}
