package services

import (
	"context"
	"errors"
	"fmt"

	"bugtracker/backend/app/models"
	"bugtracker/backend/app/repo"

	"gorm.io/gorm"
)

// BugDetail is a bug joined with its project and the accounts assigned to it.
type BugDetail struct {
	Bug models.Bug
	// Project is nil once the project has been deleted.
	Project   *models.Project
	Assignees []models.User
}

// detailAssembler builds BugDetail with one lookup per entity type; the
// store is not expected to join.
type detailAssembler struct {
	bugs     *repo.BugRepository
	projects *repo.ProjectRepository
	users    *repo.UserRepository
}

func (a detailAssembler) assemble(ctx context.Context, bugID uint) (*BugDetail, error) {
	b, err := a.bugs.FindByID(ctx, bugID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, detailed(ErrNotFound, "Bug not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find bug: %w", err)
	}

	detail := &BugDetail{Bug: *b}
	p, err := a.projects.FindByID(ctx, b.ProjectID)
	switch {
	case err == nil:
		detail.Project = p
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("find project: %w", err)
	}

	users, err := a.users.FindByIDs(ctx, b.AssignedTo())
	if err != nil {
		return nil, fmt.Errorf("find assignees: %w", err)
	}
	detail.Assignees = users
	return detail, nil
}
