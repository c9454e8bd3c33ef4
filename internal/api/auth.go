package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wyejay/MedPeer/internal/auth"
	"github.com/wyejay/MedPeer/internal/models"
)

type registerRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=64"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Role      string `json:"role"`
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// userResponse is the public shape of a user account
type userResponse struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name"`
	Role          string    `json:"role"`
	Institution   string    `json:"institution,omitempty"`
	YearLevel     string    `json:"year_level,omitempty"`
	Specialty     string    `json:"specialty,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	Location      string    `json:"location,omitempty"`
	Website       string    `json:"website,omitempty"`
	PrivacyLevel  string    `json:"privacy_level"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Username:      u.Username,
		FullName:      u.FullName(),
		Role:          u.Role,
		Institution:   u.Institution.String,
		YearLevel:     u.YearLevel.String,
		Specialty:     u.Specialty.String,
		Bio:           u.Bio.String,
		Location:      u.Location.String,
		Website:       u.Website.String,
		PrivacyLevel:  u.PrivacyLevel,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

// register creates an account and returns a signed token
func (r *Router) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := c.Request.Context()
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if existing, err := r.users.GetByUsername(ctx, username); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to check username")
		return
	} else if existing != nil {
		abortWithError(c, http.StatusConflict, "username already taken")
		return
	}
	if existing, err := r.users.GetByEmail(ctx, email); err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to check email")
		return
	} else if existing != nil {
		abortWithError(c, http.StatusConflict, "email already registered")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	switch role {
	case models.RoleStudent, models.RoleDoctor, models.RoleNurse,
		models.RolePharmacist, models.RoleLabScientist, models.RoleAlliedHealth:
	default:
		abortWithError(c, http.StatusUnprocessableEntity, "unknown role")
		return
	}

	hash, err := auth.HashPassword(req.Password, r.cfg.Auth.BcryptCost)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		PrivacyLevel: models.PrivacyPublic,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastSeen:     now,
	}
	if err := r.users.Create(ctx, user); err != nil {
		r.logger.Error("failed to create user", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := r.tokens.Issue(user.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  newUserResponse(user),
	})
}

// login authenticates by username or email and returns a signed token
func (r *Router) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := c.Request.Context()
	login := strings.ToLower(strings.TrimSpace(req.Login))

	user, err := r.users.GetByUsername(ctx, login)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to load user")
		return
	}
	if user == nil {
		user, err = r.users.GetByEmail(ctx, login)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "failed to load user")
			return
		}
	}

	// Same response whether the account is missing or the password is wrong
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		abortWithError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !user.IsActive {
		abortWithError(c, http.StatusForbidden, "account is deactivated")
		return
	}

	if err := r.users.TouchLastSeen(ctx, user.ID); err != nil {
		r.logger.Warn("failed to update last_seen", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	token, err := r.tokens.Issue(user.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  newUserResponse(user),
	})
}
