package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserRole is the role string issued by the course backend.
type UserRole string

// Known roles. The conversational views are restricted to RoleAdmin.
const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpstreamUser is the user object returned by the backend login endpoint.
type UpstreamUser struct {
	ID    FlexString `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  string     `json:"role,omitempty"`
}

// UpstreamLoginResponse mirrors the backend's POST /auth/login body.
type UpstreamLoginResponse struct {
	Success bool         `json:"success"`
	Role    UserRole     `json:"role"`
	User    UpstreamUser `json:"user"`
}

// LoginResponse returns the backend result plus the issued session token.
type LoginResponse struct {
	Success     bool         `json:"success"`
	Role        UserRole     `json:"role"`
	User        UpstreamUser `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
}

// Session is the server-side record backing an issued token.
type Session struct {
	ID     string   `json:"id"`
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
}

// JWTClaims represents the session token payload.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Role      UserRole `json:"role"`
	SessionID string   `json:"sid"`
	jwt.RegisteredClaims
}

// Identity returns the stable per-user identity used to namespace stored state.
func (c *JWTClaims) Identity() string {
	if c == nil {
		return ""
	}
	if c.UserID != "" {
		return c.UserID
	}
	return c.Email
}
