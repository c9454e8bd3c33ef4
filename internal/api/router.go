// Package api exposes the MedPeer REST surface: authentication, feed,
// search, posts, messaging, notifications, uploads and moderation.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wyejay/MedPeer/internal/auth"
	"github.com/wyejay/MedPeer/internal/cache"
	"github.com/wyejay/MedPeer/internal/db"
	"github.com/wyejay/MedPeer/internal/feed"
	"github.com/wyejay/MedPeer/internal/files"
	"github.com/wyejay/MedPeer/internal/search"
	"github.com/wyejay/MedPeer/pkg/config"
	"github.com/wyejay/MedPeer/pkg/logging"
)

// Router sets up API routes
type Router struct {
	db     *db.DB
	cache  *cache.Cache
	tokens *auth.TokenIssuer
	store  *files.Store
	feed   *feed.Service
	search *search.Service
	cfg    *config.Config
	logger *zap.Logger

	users         *db.UserRepository
	posts         *db.PostRepository
	comments      *db.CommentRepository
	follows       *db.FollowRepository
	tags          *db.TagRepository
	messages      *db.MessageRepository
	notifications *db.NotificationRepository
	attachments   *db.AttachmentRepository
	flags         *db.FlagRepository
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, tokens *auth.TokenIssuer, store *files.Store, cfg *config.Config) *Router {
	repo := db.NewRepository(database.DB)

	return &Router{
		db:     database,
		cache:  redisCache,
		tokens: tokens,
		store:  store,
		feed:   feed.NewService(database.DB, cfg.Feed.DefaultLimit, cfg.Feed.MaxLimit),
		search: search.NewService(database.DB, cfg.Feed.DefaultLimit),
		cfg:    cfg,
		logger: logging.GetLogger().With(zap.String("component", "api-router")),

		users:         db.NewUserRepository(repo),
		posts:         db.NewPostRepository(repo),
		comments:      db.NewCommentRepository(repo),
		follows:       db.NewFollowRepository(repo),
		tags:          db.NewTagRepository(repo),
		messages:      db.NewMessageRepository(repo),
		notifications: db.NewNotificationRepository(repo),
		attachments:   db.NewAttachmentRepository(repo),
		flags:         db.NewFlagRepository(repo),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	api := engine.Group("/api")

	// Public endpoints
	api.POST("/auth/register", r.register)
	api.POST("/auth/login", r.login)

	// Authenticated endpoints
	authed := api.Group("", r.requireAuth())

	authed.GET("/feed", r.getFeed)
	authed.GET("/search", r.getSearch)

	authed.GET("/users/suggested", r.getSuggestedUsers)
	authed.GET("/users/:username", r.getUserProfile)
	authed.GET("/users/:username/posts", r.listUserPosts)
	authed.PUT("/users/me", r.updateProfile)
	authed.POST("/users/:username/follow", r.followUser)
	authed.DELETE("/users/:username/follow", r.unfollowUser)

	authed.POST("/posts", r.createPost)
	authed.GET("/posts/:id", r.getPost)
	authed.PUT("/posts/:id", r.updatePost)
	authed.DELETE("/posts/:id", r.deletePost)
	authed.POST("/posts/:id/like", r.likePost)
	authed.GET("/posts/:id/comments", r.listComments)
	authed.POST("/posts/:id/comments", r.createComment)
	authed.POST("/posts/:id/flag", r.flagPost)
	authed.DELETE("/comments/:id", r.deleteComment)
	authed.POST("/comments/:id/flag", r.flagComment)
	authed.GET("/tags/:name/posts", r.listPostsByTag)

	authed.GET("/messages", r.listConversations)
	authed.GET("/messages/unread-count", r.messageUnreadCount)
	authed.GET("/messages/search", r.searchMessages)
	authed.GET("/messages/:id", r.getThread)
	authed.POST("/messages", r.sendMessage)

	authed.GET("/notifications", r.listNotifications)
	authed.GET("/notifications/unread-count", r.notificationUnreadCount)
	authed.POST("/notifications/read-all", r.markAllNotificationsRead)
	authed.POST("/notifications/:id/read", r.markNotificationRead)

	authed.POST("/uploads", r.uploadFile)
	authed.GET("/uploads/:id", r.downloadFile)

	// Admin endpoints
	admin := authed.Group("/moderation", r.requireAdmin())
	admin.GET("/flags", r.listFlags)
	admin.POST("/flags/:id/review", r.reviewFlag)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	if err := r.db.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"service": "medpeer-api",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "medpeer-api",
	})
}
