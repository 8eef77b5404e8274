package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateTaskRequest struct {
	Name        string `json:"nameTask"    validate:"required,max=200"`
	Description string `json:"descripcion" validate:"max=2000"`
	Category    string `json:"categoria"   validate:"max=100"`
	Status      string `json:"estatus"     validate:"required,max=50"`
	Time        *int   `json:"time"        validate:"omitempty,gt=0"`
	TimeUnit    string `json:"timeUnit"    validate:"omitempty,oneof=minutes hours days weeks"`
}

// UpdateTaskRequest is a partial patch: nil means "leave unchanged". Description
// and category may be cleared with an empty string; name and status may not.
type UpdateTaskRequest struct {
	Name        *string `json:"nameTask"    validate:"omitempty,min=1,max=200"`
	Description *string `json:"descripcion" validate:"omitempty,max=2000"`
	Category    *string `json:"categoria"   validate:"omitempty,max=100"`
	Status      *string `json:"estatus"     validate:"omitempty,min=1,max=50"`
	Time        *int    `json:"time"        validate:"omitempty,gt=0"`
	TimeUnit    *string `json:"timeUnit"    validate:"omitempty,oneof=minutes hours days weeks"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TaskResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"nameTask"`
	Description string    `json:"descripcion"`
	Category    string    `json:"categoria"`
	Status      string    `json:"estatus"`
	Deadline    time.Time `json:"deadline"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateTaskResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"taskId"`
}
