package models

import (
	"database/sql"
	"strings"
	"time"
)

// User represents a registered MedPeer account
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement;column:id"`
	Username     string `gorm:"type:varchar(64);not null;uniqueIndex:users_ux_username;column:username"`
	Email        string `gorm:"type:varchar(120);not null;uniqueIndex:users_ux_email;column:email"`
	PasswordHash string `gorm:"type:varchar(256);not null;column:password_hash"`
	FirstName    string `gorm:"type:varchar(64);not null;column:first_name"`
	LastName     string `gorm:"type:varchar(64);not null;column:last_name"`

	// Medical professional fields
	Role        string         `gorm:"type:varchar(20);not null;default:'student';column:role"`
	Institution sql.NullString `gorm:"type:varchar(200);column:institution"`
	YearLevel   sql.NullString `gorm:"type:varchar(50);column:year_level"`
	Specialty   sql.NullString `gorm:"type:varchar(100);column:specialty"`

	// Profile fields
	Bio            sql.NullString `gorm:"type:text;column:bio"`
	ProfilePicture sql.NullString `gorm:"type:varchar(200);column:profile_picture"`
	Location       sql.NullString `gorm:"type:varchar(100);column:location"`
	Website        sql.NullString `gorm:"type:varchar(200);column:website"`

	// Privacy and status
	PrivacyLevel  string `gorm:"type:varchar(20);not null;default:'public';column:privacy_level"`
	EmailVerified bool   `gorm:"not null;default:false;column:email_verified"`
	IsActive      bool   `gorm:"not null;default:true;column:is_active"`
	IsAdmin       bool   `gorm:"not null;default:false;column:is_admin"`

	// Timestamps
	CreatedAt time.Time `gorm:"not null;index;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
	LastSeen  time.Time `gorm:"not null;column:last_seen"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// FullName returns the user's display name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// User role constants
const (
	RoleStudent      = "student"
	RoleDoctor       = "doctor"
	RoleNurse        = "nurse"
	RolePharmacist   = "pharmacist"
	RoleLabScientist = "lab_scientist"
	RoleAlliedHealth = "allied_health"
	RoleAdmin        = "admin"
)

// Privacy level constants
const (
	PrivacyPublic    = "public"
	PrivacyFollowers = "followers"
	PrivacyPrivate   = "private"
)
