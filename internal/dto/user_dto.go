package dto

import "taskmanager/internal/model"

// UpdateUserRequest is a partial patch applied by an administrator.
type UpdateUserRequest struct {
	Username *string     `json:"username" validate:"omitempty,min=1,max=100"`
	Email    *string     `json:"email"    validate:"omitempty,email,max=254"`
	Role     *model.Role `json:"role"     validate:"omitempty,oneof=1 2 3"`
}
