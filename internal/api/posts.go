package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wyejay/MedPeer/internal/markdown"
	"github.com/wyejay/MedPeer/internal/models"
)

// hashtagPattern matches inline #tags in post bodies
var hashtagPattern = regexp.MustCompile(`#([A-Za-z][A-Za-z0-9_]{1,49})`)

type createPostRequest struct {
	Title    string   `json:"title" binding:"required,max=200"`
	Body     string   `json:"body" binding:"required"`
	PostType string   `json:"post_type"`
	Tags     []string `json:"tags"`
}

type updatePostRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// postResponse is the detailed shape of a post
type postResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	BodyHTML  string    `json:"body_html"`
	PostType  string    `json:"post_type"`
	AuthorID  int64     `json:"author_id"`
	Author    string    `json:"author"`
	Views     int64     `json:"views"`
	Likes     int64     `json:"likes"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Router) newPostResponse(ctx context.Context, post *models.Post) postResponse {
	author := ""
	if post.Author != nil {
		author = post.Author.Username
	} else {
		author = r.usernameOf(ctx, post.UserID)
	}
	tags := make([]string, len(post.Tags))
	for i, t := range post.Tags {
		tags[i] = t.Name
	}
	return postResponse{
		ID:        post.ID,
		Title:     post.Title,
		Body:      post.Body,
		BodyHTML:  markdown.Render(post.Body),
		PostType:  post.PostType,
		AuthorID:  post.UserID,
		Author:    author,
		Views:     post.Views,
		Likes:     post.Likes,
		Tags:      tags,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// createPost stores a new post and attaches explicit and inline #tags
func (r *Router) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	postType := req.PostType
	if postType == "" {
		postType = models.PostTypeNote
	}
	switch postType {
	case models.PostTypeNote, models.PostTypeQuestion, models.PostTypeAnnouncement, models.PostTypeResource:
	default:
		abortWithError(c, http.StatusUnprocessableEntity, "unknown post type")
		return
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()
	post := &models.Post{
		UserID:    currentUserID(c),
		Title:     strings.TrimSpace(req.Title),
		Body:      req.Body,
		PostType:  postType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.posts.Create(ctx, post); err != nil {
		r.logger.Error("failed to create post", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "failed to create post")
		return
	}

	if err := r.attachTags(ctx, post, req.Tags); err != nil {
		r.logger.Warn("failed to attach tags", zap.Int64("post_id", post.ID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, r.newPostResponse(ctx, post))
}

// attachTags resolves the explicit tag list plus inline #tags and links
// them to the post
func (r *Router) attachTags(ctx context.Context, post *models.Post, explicit []string) error {
	names := map[string]bool{}
	for _, name := range explicit {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "#")))
		if name != "" {
			names[name] = true
		}
	}
	for _, match := range hashtagPattern.FindAllStringSubmatch(post.Body, -1) {
		names[strings.ToLower(match[1])] = true
	}
	if len(names) == 0 {
		return nil
	}

	tags := make([]models.Tag, 0, len(names))
	for name := range names {
		tag, err := r.tags.GetOrCreate(ctx, name)
		if err != nil {
			return err
		}
		tags = append(tags, *tag)
	}
	if err := r.tags.AttachTags(ctx, post, tags); err != nil {
		return err
	}
	post.Tags = tags
	return nil
}

// getPost returns one post and bumps its view counter
func (r *Router) getPost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
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

	if err := r.posts.IncrementViews(ctx, post.ID); err != nil {
		r.logger.Warn("failed to increment views", zap.Int64("post_id", post.ID), zap.Error(err))
	} else {
		post.Views++
	}

	c.JSON(http.StatusOK, r.newPostResponse(ctx, post))
}

// updatePost edits a post; only the author may edit
func (r *Router) updatePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updatePostRequest
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
	if post.UserID != currentUserID(c) {
		abortWithError(c, http.StatusForbidden, "not the author")
		return
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		post.Body = *req.Body
	}
	post.UpdatedAt = time.Now().UTC()

	if err := r.posts.Update(ctx, post); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to update post")
		return
	}

	c.JSON(http.StatusOK, r.newPostResponse(ctx, post))
}

// deletePost soft-deletes a post; the author or an admin may delete
func (r *Router) deletePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
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

	if post.UserID != currentUserID(c) {
		requester, err := r.users.GetByID(ctx, currentUserID(c))
		if err != nil || requester == nil || !requester.IsAdmin {
			abortWithError(c, http.StatusForbidden, "not the author")
			return
		}
	}

	if err := r.posts.SoftDelete(ctx, post.ID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to delete post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// likePost bumps the like counter and returns the new count
func (r *Router) likePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
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

	likes, err := r.posts.IncrementLikes(ctx, post.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to like post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

// commentResponse is the public shape of a comment
type commentResponse struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	AuthorID  int64     `json:"author_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	BodyHTML  string    `json:"body_html"`
	CreatedAt time.Time `json:"created_at"`
}

// listComments returns the live comments on a post, oldest first
func (r *Router) listComments(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
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

	comments, err := r.comments.ListByPost(ctx, post.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load comments")
		return
	}

	out := make([]commentResponse, len(comments))
	for i, comment := range comments {
		out[i] = commentResponse{
			ID:        comment.ID,
			PostID:    comment.PostID,
			AuthorID:  comment.UserID,
			Author:    r.usernameOf(ctx, comment.UserID),
			Body:      comment.Body,
			BodyHTML:  markdown.Render(comment.Body),
			CreatedAt: comment.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"comments": out})
}

type createCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// createComment adds a comment and notifies the post author
func (r *Router) createComment(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req createCommentRequest
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

	now := time.Now().UTC()
	comment := &models.Comment{
		PostID:    post.ID,
		UserID:    currentUserID(c),
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.comments.Create(ctx, comment); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to create comment")
		return
	}

	if post.UserID != comment.UserID {
		r.notify(ctx, post.UserID, models.NotifyTypeComment,
			fmt.Sprintf("@%s commented on your post %q", r.usernameOf(ctx, comment.UserID), post.Title),
			sql.NullInt64{Int64: post.ID, Valid: true},
			sql.NullInt64{Int64: comment.UserID, Valid: true})
	}

	c.JSON(http.StatusCreated, commentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.UserID,
		Author:    r.usernameOf(ctx, comment.UserID),
		Body:      comment.Body,
		BodyHTML:  markdown.Render(comment.Body),
		CreatedAt: comment.CreatedAt,
	})
}

// deleteComment soft-deletes a comment; the author or an admin may delete
func (r *Router) deleteComment(c *gin.Context) {
	commentID, ok := paramID(c, "id")
	if !ok {
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

	if comment.UserID != currentUserID(c) {
		requester, err := r.users.GetByID(ctx, currentUserID(c))
		if err != nil || requester == nil || !requester.IsAdmin {
			abortWithError(c, http.StatusForbidden, "not the author")
			return
		}
	}

	if err := r.comments.SoftDelete(ctx, comment.ID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to delete comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// listUserPosts returns a user's live posts, newest first
func (r *Router) listUserPosts(c *gin.Context) {
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

	limit, offset := pagination(c, r.cfg.Feed.DefaultLimit, r.cfg.Feed.MaxLimit)
	posts, err := r.posts.ListByAuthor(ctx, user.ID, limit, offset)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load posts")
		return
	}

	out := make([]postResponse, len(posts))
	for i, post := range posts {
		out[i] = r.newPostResponse(ctx, post)
	}
	c.JSON(http.StatusOK, gin.H{"posts": out})
}

// listPostsByTag returns the live posts carrying a tag, newest first
func (r *Router) listPostsByTag(c *gin.Context) {
	limit, offset := pagination(c, r.cfg.Feed.DefaultLimit, r.cfg.Feed.MaxLimit)

	ctx := c.Request.Context()
	posts, err := r.posts.ListByTag(ctx, strings.ToLower(c.Param("name")), limit, offset)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load posts")
		return
	}

	out := make([]postResponse, len(posts))
	for i, post := range posts {
		out[i] = r.newPostResponse(ctx, post)
	}
	c.JSON(http.StatusOK, gin.H{"posts": out})
}

// paramID parses a positive integer path parameter, aborting on bad input
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// pagination reads limit/offset query parameters with clamping
func pagination(c *gin.Context, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}
	return limit, offset
}
