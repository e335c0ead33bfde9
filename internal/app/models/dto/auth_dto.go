package dto

import "github.com/edvios/backend/internal/app/models"

// RegisterRequest signs a new account up with the identity provider
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
}

// LoginRequest exchanges credentials for a session
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new session
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// SessionResponse is the identity provider session returned to clients
type SessionResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
	UserID       string `json:"userId"`
}

// CreateUserRequest creates the local user row for the authenticated subject
type CreateUserRequest struct {
	FirstName string          `json:"firstName" binding:"required,max=100"`
	LastName  string          `json:"lastName" binding:"required,max=100"`
	Phone     *string         `json:"phone,omitempty" binding:"omitempty,max=32"`
	Role      models.RoleType `json:"role,omitempty" binding:"omitempty,role"`
}

// ChangeRoleRequest is the admin role change body
type ChangeRoleRequest struct {
	Role models.RoleType `json:"role" binding:"required,role"`
}

// VerifyEmailRequest carries the emailed token
type VerifyEmailRequest struct {
	Token string `json:"token" form:"token" binding:"required,len=64,hexadecimal"`
}

// ResendVerificationRequest asks for a fresh verification email
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}
