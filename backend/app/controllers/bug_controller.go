package controllers

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"bugtracker/backend/app/dto"
	"bugtracker/backend/app/middleware"
	"bugtracker/backend/app/models"
	"bugtracker/backend/app/repo"
	"bugtracker/backend/app/services"

	validator "github.com/go-playground/validator/v10"
)

type BugController struct {
	Tickets  *services.TicketService
	Validate *validator.Validate
}

func NewBugController(tickets *services.TicketService, v *validator.Validate) *BugController {
	return &BugController{Tickets: tickets, Validate: v}
}

func (c *BugController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.BugCreateRequest
	if !decode(w, r, c.Validate, &req) {
		return
	}
	b, err := c.Tickets.Create(r.Context(), middleware.GetUser(r.Context()), services.NewBug{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Status:      req.Status,
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bugResponse(b))
}

// ListByProject handles GET /bugs/projects/{project_id} with optional
// severity, status and limit query parameters.
func (c *BugController) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "project_id")
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := repo.BugFilter{Severity: q.Get("severity"), Status: q.Get("status")}
	if filter.Severity != "" && !slices.Contains(models.Severities, filter.Severity) {
		writeDetail(w, http.StatusUnprocessableEntity, "severity must be one of: "+strings.Join(models.Severities, " "))
		return
	}
	if filter.Status != "" && !slices.Contains(models.Statuses, filter.Status) {
		writeDetail(w, http.StatusUnprocessableEntity, "status must be one of: "+strings.Join(models.Statuses, " "))
		return
	}
	limit := services.DefaultBugListLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeDetail(w, http.StatusUnprocessableEntity, "limit must be a positive integer")
			return
		}
		limit = n
	}

	bugs, err := c.Tickets.List(r.Context(), middleware.GetUser(r.Context()), projectID, filter, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]dto.BugResponse, 0, len(bugs))
	for i := range bugs {
		out = append(out, bugResponse(&bugs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *BugController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "bug_id")
	if !ok {
		return
	}
	detail, err := c.Tickets.Get(r.Context(), middleware.GetUser(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bugDetailResponse(detail))
}

func (c *BugController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "bug_id")
	if !ok {
		return
	}
	var req dto.BugUpdateRequest
	if !decode(w, r, c.Validate, &req) {
		return
	}
	patch := services.BugPatch{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Status:      req.Status,
	}
	if _, err := c.Tickets.Update(r.Context(), middleware.GetUser(r.Context()), id, patch); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Msg: "Bug updated successfully"})
}

func (c *BugController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "bug_id")
	if !ok {
		return
	}
	if err := c.Tickets.Delete(r.Context(), middleware.GetUser(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func bugResponse(b *models.Bug) dto.BugResponse {
	return dto.BugResponse{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Severity:    b.Severity,
		Status:      b.Status,
		ProjectID:   b.ProjectID,
		AssignedTo:  b.AssignedTo(),
		CreatedAt:   b.CreatedAt,
		CreatedBy:   b.CreatedBy,
	}
}

func bugDetailResponse(d *services.BugDetail) dto.BugDetailResponse {
	out := dto.BugDetailResponse{
		ID:          d.Bug.ID,
		Title:       d.Bug.Title,
		Description: d.Bug.Description,
		Severity:    d.Bug.Severity,
		Status:      d.Bug.Status,
		CreatedAt:   d.Bug.CreatedAt,
		CreatedBy:   d.Bug.CreatedBy,
		AssignedTo:  make([]dto.UserResponse, 0, len(d.Assignees)),
	}
	if d.Project != nil {
		p := projectResponse(d.Project)
		out.Project = &p
	}
	for _, u := range d.Assignees {
		out.AssignedTo = append(out.AssignedTo, dto.UserResponse{Email: u.Email, Role: u.Role})
	}
	return out
}
