package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AssignGroupTaskRequest accepts dueDate as YYYY-MM-DD or RFC 3339.
type AssignGroupTaskRequest struct {
	Title       string   `json:"title"       validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=2000"`
	DueDate     string   `json:"dueDate"     validate:"required"`
	AssignedTo  []string `json:"assignedTo"  validate:"required,min=1,dive,required"`
}

type UpdateGroupTaskStatusRequest struct {
	Status    string `json:"status"    validate:"required"`
	UpdatedBy string `json:"updatedBy" validate:"required,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type GroupTaskResponse struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"groupId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	AssignedTo  []string  `json:"assignedTo"`
	Status      string    `json:"status"`
	UpdatedBy   string    `json:"updatedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type AssignGroupTaskResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"taskId"`
}

type GroupTaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Pending    int `json:"pending"`
}
