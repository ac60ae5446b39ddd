package services

import (
	"context"
	"errors"
	"fmt"

	"bugtracker/backend/app/models"
	"bugtracker/backend/app/policy"
	"bugtracker/backend/app/repo"

	"gorm.io/gorm"
)

type ProjectService struct{ projects *repo.ProjectRepository }

func NewProjectService(projects *repo.ProjectRepository) *ProjectService {
	return &ProjectService{projects: projects}
}

func (s *ProjectService) Create(ctx context.Context, caller *models.User, name, description string) (*models.Project, error) {
	if !policy.AuthorizeProject(policy.SubjectOf(caller), policy.Create, nil) {
		return nil, detailed(ErrUnauthorized, "You are not authorized to create a project")
	}
	p := &models.Project{Name: name, Description: description, CreatedBy: caller.ID}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// ListOwned returns the caller's own projects.
func (s *ProjectService) ListOwned(ctx context.Context, caller *models.User) ([]models.Project, error) {
	if !policy.AuthorizeProject(policy.SubjectOf(caller), policy.List, nil) {
		return nil, detailed(ErrUnauthorized, "You are not authorized.")
	}
	projects, err := s.projects.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) Update(ctx context.Context, caller *models.User, id uint, patch ProjectPatch) (*models.Project, error) {
	p, err := s.authorized(ctx, caller, policy.Update, id)
	if err != nil {
		return nil, err
	}
	if err := s.projects.Updates(ctx, p.ID, touch(patch.Apply(p), &p.UpdatedAt)); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// Delete removes the project. Its bugs are kept and keep pointing at the
// removed project id.
func (s *ProjectService) Delete(ctx context.Context, caller *models.User, id uint) error {
	p, err := s.authorized(ctx, caller, policy.Delete, id)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (s *ProjectService) authorized(ctx context.Context, caller *models.User, action policy.Action, id uint) (*models.Project, error) {
	sub := policy.SubjectOf(caller)
	if !policy.ProjectRoleAllows(sub, action) {
		return nil, detailed(ErrUnauthorized, "You are not authorized.")
	}
	p, err := s.projects.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, detailed(ErrNotFound, "Project not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	if !policy.AuthorizeProject(sub, action, p) {
		return nil, detailed(ErrUnauthorized, "You are not authorized.")
	}
	return p, nil
}
