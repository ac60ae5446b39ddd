package controllers

import (
	"net/http"

	"bugtracker/backend/app/dto"
	"bugtracker/backend/app/middleware"
	"bugtracker/backend/app/models"
	"bugtracker/backend/app/services"

	validator "github.com/go-playground/validator/v10"
)

type ProjectController struct {
	Projects *services.ProjectService
	Validate *validator.Validate
}

func NewProjectController(projects *services.ProjectService, v *validator.Validate) *ProjectController {
	return &ProjectController{Projects: projects, Validate: v}
}

func (c *ProjectController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ProjectCreateRequest
	if !decode(w, r, c.Validate, &req) {
		return
	}
	p, err := c.Projects.Create(r.Context(), middleware.GetUser(r.Context()), req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, projectResponse(p))
}

// List returns the projects owned by the caller.
func (c *ProjectController) List(w http.ResponseWriter, r *http.Request) {
	projects, err := c.Projects.ListOwned(r.Context(), middleware.GetUser(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, projectResponse(&projects[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *ProjectController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project_id")
	if !ok {
		return
	}
	var req dto.ProjectUpdateRequest
	if !decode(w, r, c.Validate, &req) {
		return
	}
	patch := services.ProjectPatch{Name: req.Name, Description: req.Description}
	if _, err := c.Projects.Update(r.Context(), middleware.GetUser(r.Context()), id, patch); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.MessageResponse{Msg: "Project updated successfully."})
}

func (c *ProjectController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project_id")
	if !ok {
		return
	}
	if err := c.Projects.Delete(r.Context(), middleware.GetUser(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectResponse(p *models.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}
