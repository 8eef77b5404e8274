package dto

import (
	"time"

	"taskmanager/internal/model"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type LoginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	UserID    string       `json:"userId"`
	ExpiresIn int          `json:"expiresIn"` // seconds
	User      UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
