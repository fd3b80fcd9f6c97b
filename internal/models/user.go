package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents admin panel roles.
type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RoleAdmin      UserRole = "admin"
	RoleEditor     UserRole = "editor"
	RoleViewer     UserRole = "viewer"
)

// User is an admin panel account as exposed by the store. Credentials never leave the auth collaborator.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email"`
	Role      UserRole   `json:"role"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// JWTClaims describes the claims embedded in access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
