// Package policy decides who may act on projects and bugs.
//
// Each entity type has a rule table keyed by action. A rule names the role
// the caller must hold (empty means any authenticated account) and the
// relationships to the resource of which the caller must hold at least one
// (zero means none is needed).
package policy

import "bugtracker/backend/app/models"

type Action string

const (
	Create Action = "create"
	List   Action = "list"
	Read   Action = "read"
	Update Action = "update"
	Delete Action = "delete"
)

// Relation is a bit set of the caller's relationships to a resource.
type Relation uint8

const (
	Owner    Relation = 1 << iota // created the resource
	Assignee                      // listed in the bug's assignment set
)

// Subject is the authenticated caller.
type Subject struct {
	UserID uint
	Role   string
}

func SubjectOf(u *models.User) Subject {
	if u == nil {
		return Subject{}
	}
	return Subject{UserID: u.ID, Role: u.Role}
}

type rule struct {
	role      string
	relations Relation
}

type table map[Action]rule

var projectRules = table{
	Create: {role: models.RoleManager},
	List:   {role: models.RoleManager},
	Read:   {},
	Update: {role: models.RoleManager, relations: Owner},
	Delete: {role: models.RoleManager, relations: Owner},
}

var bugRules = table{
	Create: {role: models.RoleManager},
	List:   {},
	Read:   {},
	Update: {relations: Owner | Assignee},
	Delete: {relations: Owner},
}

func (t table) roleAllows(sub Subject, action Action) bool {
	r, ok := t[action]
	if !ok || sub.UserID == 0 {
		return false
	}
	return r.role == "" || r.role == sub.Role
}

func (t table) allows(sub Subject, action Action, rel Relation) bool {
	if !t.roleAllows(sub, action) {
		return false
	}
	need := t[action].relations
	return need == 0 || rel&need != 0
}

// ProjectRoleAllows reports whether the caller's role permits attempting
// action on projects, before any project is loaded.
func ProjectRoleAllows(sub Subject, action Action) bool {
	return projectRules.roleAllows(sub, action)
}

// AuthorizeProject decides action on p. p may be nil for actions that need
// no relationship.
func AuthorizeProject(sub Subject, action Action, p *models.Project) bool {
	return projectRules.allows(sub, action, ProjectRelation(sub, p))
}

func ProjectRelation(sub Subject, p *models.Project) Relation {
	var rel Relation
	if p != nil && sub.UserID != 0 && p.CreatedBy == sub.UserID {
		rel |= Owner
	}
	return rel
}

// BugRoleAllows reports whether the caller's role permits attempting action
// on bugs, before any bug is loaded.
func BugRoleAllows(sub Subject, action Action) bool {
	return bugRules.roleAllows(sub, action)
}

// AuthorizeBug decides action on b. Assignment grants update but not delete.
func AuthorizeBug(sub Subject, action Action, b *models.Bug) bool {
	return bugRules.allows(sub, action, BugRelation(sub, b))
}

func BugRelation(sub Subject, b *models.Bug) Relation {
	var rel Relation
	if b == nil || sub.UserID == 0 {
		return rel
	}
	if b.CreatedBy == sub.UserID {
		rel |= Owner
	}
	if b.IsAssigned(sub.UserID) {
		rel |= Assignee
	}
	return rel
}
