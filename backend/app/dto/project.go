package dto

import "time"

type ProjectCreateRequest struct {
	Name        string `json:"name" validate:"required,max=191"`
	Description string `json:"description"`
}

// ProjectUpdateRequest is a partial update; absent or null fields are kept.
type ProjectUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=191"`
	Description *string `json:"description"`
}

type ProjectResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
