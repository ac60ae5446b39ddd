package models

import (
	"slices"
	"time"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

const (
	StatusOpen             = "open"
	StatusClosed           = "closed"
	StatusUnderDevelopment = "underdevelopment"
)

var (
	Severities = []string{SeverityLow, SeverityMedium, SeverityHigh}
	Statuses   = []string{StatusOpen, StatusClosed, StatusUnderDevelopment}
)

// Bug is a ticket filed against a project. ProjectID carries no foreign key
// constraint: deleting a project leaves its bugs in place.
type Bug struct {
	ID          uint          `gorm:"primaryKey"`
	Title       string        `gorm:"size:255;not null"`
	Description string        `gorm:"type:text"`
	Severity    string        `gorm:"size:16;index;not null"`
	Status      string        `gorm:"size:32;index;not null"`
	ProjectID   uint          `gorm:"index;not null"`
	Assignees   []BugAssignee `gorm:"foreignKey:BugID"`
	CreatedBy   uint          `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BugAssignee is one row of the bug <-> user assignment set.
type BugAssignee struct {
	BugID  uint `gorm:"primaryKey;autoIncrement:false"`
	UserID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

// AssignedTo returns the assigned user ids in ascending order.
func (b *Bug) AssignedTo() []uint {
	ids := make([]uint, 0, len(b.Assignees))
	for _, a := range b.Assignees {
		ids = append(ids, a.UserID)
	}
	return ids
}

func (b *Bug) IsAssigned(userID uint) bool {
	return slices.Contains(b.AssignedTo(), userID)
}

// SetAssignees replaces the assignment set, dropping duplicate ids. Rows
// are kept sorted by user id, the order the repository loads them in.
func (b *Bug) SetAssignees(userIDs []uint) {
	ids := slices.Clone(userIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	b.Assignees = b.Assignees[:0]
	for _, id := range ids {
		b.Assignees = append(b.Assignees, BugAssignee{BugID: b.ID, UserID: id})
	}
}
