package dto

import "time"

type BugCreateRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Severity    string `json:"severity" validate:"required,enum_severity"`
	Status      string `json:"status" validate:"required,enum_status"`
	ProjectID   uint   `json:"project_id" validate:"required"`
	AssignedTo  []uint `json:"assigned_to"`
}

// BugUpdateRequest is a partial update; absent or null fields are kept.
type BugUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Severity    *string `json:"severity" validate:"omitempty,enum_severity"`
	Status      *string `json:"status" validate:"omitempty,enum_status"`
}

type BugResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	ProjectID   uint      `json:"project_id"`
	AssignedTo  []uint    `json:"assigned_to"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   uint      `json:"created_by"`
}

type BugDetailResponse struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Severity    string           `json:"severity"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	CreatedBy   uint             `json:"created_by"`
	Project     *ProjectResponse `json:"project"`
	AssignedTo  []UserResponse   `json:"assigned_to"`
}
