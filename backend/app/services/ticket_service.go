package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"bugtracker/backend/app/models"
	"bugtracker/backend/app/notify"
	"bugtracker/backend/app/policy"
	"bugtracker/backend/app/repo"

	"gorm.io/gorm"
)

const (
	DefaultBugListLimit = 5
	MaxBugListLimit     = 100
)

// Notifier hands a notification off without waiting for delivery.
type Notifier interface {
	Notify(ctx context.Context, m notify.Message)
}

type NewBug struct {
	Title       string
	Description string
	Severity    string
	Status      string
	ProjectID   uint
	AssignedTo  []uint
}

type TicketService struct {
	bugs     *repo.BugRepository
	projects *repo.ProjectRepository
	users    *repo.UserRepository
	notifier Notifier
	details  detailAssembler
}

func NewTicketService(bugs *repo.BugRepository, projects *repo.ProjectRepository, users *repo.UserRepository, notifier Notifier) *TicketService {
	return &TicketService{
		bugs:     bugs,
		projects: projects,
		users:    users,
		notifier: notifier,
		details:  detailAssembler{bugs: bugs, projects: projects, users: users},
	}
}

// Create files a bug. Every assignee must be an existing account.
func (s *TicketService) Create(ctx context.Context, caller *models.User, in NewBug) (*models.Bug, error) {
	if !policy.AuthorizeBug(policy.SubjectOf(caller), policy.Create, nil) {
		return nil, detailed(ErrUnauthorized, "You are not authorized to create a ticket.")
	}
	if !slices.Contains(models.Severities, in.Severity) || !slices.Contains(models.Statuses, in.Status) {
		return nil, detailed(ErrInvalidInput, "invalid severity or status")
	}
	if _, err := s.projects.FindByID(ctx, in.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, detailed(ErrProjectNotFound, "Project not found")
		}
		return nil, fmt.Errorf("find project: %w", err)
	}

	b := &models.Bug{
		Title:       in.Title,
		Description: in.Description,
		Severity:    in.Severity,
		Status:      in.Status,
		ProjectID:   in.ProjectID,
		CreatedBy:   caller.ID,
	}
	b.SetAssignees(in.AssignedTo)
	assigned := b.AssignedTo()
	if len(assigned) == 0 {
		return nil, detailed(ErrInvalidAssignee, "User not found in the database")
	}
	found, err := s.users.CountByIDs(ctx, assigned)
	if err != nil {
		return nil, fmt.Errorf("count assignees: %w", err)
	}
	if found != int64(len(assigned)) {
		return nil, detailed(ErrInvalidAssignee, "User not found in the database")
	}

	if err := s.bugs.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create bug: %w", err)
	}
	s.notifier.Notify(ctx, notify.BugMessage(notify.EventBugCreated, b))
	return b, nil
}

// List returns up to limit bugs of a project. Any authenticated account may
// list any project.
func (s *TicketService) List(ctx context.Context, caller *models.User, projectID uint, filter repo.BugFilter, limit int) ([]models.Bug, error) {
	if !policy.AuthorizeBug(policy.SubjectOf(caller), policy.List, nil) {
		return nil, detailed(ErrUnauthorized, "You are not authorized.")
	}
	if limit <= 0 {
		limit = DefaultBugListLimit
	}
	if limit > MaxBugListLimit {
		limit = MaxBugListLimit
	}
	bugs, err := s.bugs.ListByProject(ctx, projectID, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("list bugs: %w", err)
	}
	return bugs, nil
}

func (s *TicketService) Get(ctx context.Context, caller *models.User, id uint) (*BugDetail, error) {
	detail, err := s.details.assemble(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.AuthorizeBug(policy.SubjectOf(caller), policy.Read, &detail.Bug) {
		return nil, detailed(ErrUnauthorized, "You are not authorized.")
	}
	return detail, nil
}

// Update applies patch. The creator and every assignee may update.
func (s *TicketService) Update(ctx context.Context, caller *models.User, id uint, patch BugPatch) (*models.Bug, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.AuthorizeBug(policy.SubjectOf(caller), policy.Update, b) {
		return nil, detailed(ErrUnauthorized, "You are not assigned to this ticket.")
	}
	if patch.Severity != nil && !slices.Contains(models.Severities, *patch.Severity) ||
		patch.Status != nil && !slices.Contains(models.Statuses, *patch.Status) {
		return nil, detailed(ErrInvalidInput, "invalid severity or status")
	}

	// Assignees may have been removed since the ticket was filed; one
	// surviving assignee is enough.
	found, err := s.users.CountByIDs(ctx, b.AssignedTo())
	if err != nil {
		return nil, fmt.Errorf("count assignees: %w", err)
	}
	if found == 0 {
		return nil, detailed(ErrInvalidAssignee, "One or more users in assigned_to list do not exist.")
	}

	if err := s.bugs.Updates(ctx, b.ID, touch(patch.Apply(b), &b.UpdatedAt)); err != nil {
		return nil, fmt.Errorf("update bug: %w", err)
	}
	s.notifier.Notify(ctx, notify.BugMessage(notify.EventBugUpdated, b))
	return b, nil
}

// Delete removes the bug. Only its creator may delete it.
func (s *TicketService) Delete(ctx context.Context, caller *models.User, id uint) error {
	b, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !policy.AuthorizeBug(policy.SubjectOf(caller), policy.Delete, b) {
		return detailed(ErrUnauthorized, "You are not authorized to perform this action")
	}
	if err := s.bugs.Delete(ctx, b.ID); err != nil {
		return fmt.Errorf("delete bug: %w", err)
	}
	return nil
}

func (s *TicketService) find(ctx context.Context, id uint) (*models.Bug, error) {
	b, err := s.bugs.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, detailed(ErrNotFound, "Bug ticket not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("find bug: %w", err)
	}
	return b, nil
}
