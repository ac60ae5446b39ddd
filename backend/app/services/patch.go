package services

import (
	"time"

	"bugtracker/backend/app/models"
)

// ProjectPatch is a partial project update. Nil fields are left untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
}

// Apply sets the provided fields on p and returns the changed columns.
func (pp ProjectPatch) Apply(p *models.Project) map[string]any {
	fields := map[string]any{}
	if pp.Name != nil {
		p.Name = *pp.Name
		fields["name"] = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
		fields["description"] = *pp.Description
	}
	return fields
}

// BugPatch is a partial bug update. Nil fields are left untouched.
type BugPatch struct {
	Title       *string
	Description *string
	Severity    *string
	Status      *string
}

func (bp BugPatch) Apply(b *models.Bug) map[string]any {
	fields := map[string]any{}
	set := func(col string, dst *string, v *string) {
		if v == nil {
			return
		}
		*dst = *v
		fields[col] = *v
	}
	set("title", &b.Title, bp.Title)
	set("description", &b.Description, bp.Description)
	set("severity", &b.Severity, bp.Severity)
	set("status", &b.Status, bp.Status)
	return fields
}

// touch stamps updated_at on a non-empty change set and on the model, so
// the returned model matches the stored row.
func touch(fields map[string]any, updatedAt *time.Time) map[string]any {
	if len(fields) == 0 {
		return fields
	}
	*updatedAt = time.Now()
	fields["updated_at"] = *updatedAt
	return fields
}
