package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateGroupRequest struct {
	Name    string   `json:"name"    validate:"required,max=100"`
	Members []string `json:"members" validate:"omitempty,dive,required"`
	Status  string   `json:"status"  validate:"max=50"`
}

type AddMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type GroupResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	Members   []string  `json:"members"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateGroupResponse struct {
	Message string `json:"message"`
	GroupID string `json:"groupId"`
}
