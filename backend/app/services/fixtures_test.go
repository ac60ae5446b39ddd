package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"bugtracker/backend/app/credential"
	"bugtracker/backend/app/dbtest"
	jwtutil "bugtracker/backend/app/jwt"
	"bugtracker/backend/app/models"
	"bugtracker/backend/app/notify"
	"bugtracker/backend/app/repo"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (n *recordingNotifier) Notify(_ context.Context, m notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, m)
}

func (n *recordingNotifier) events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.messages))
	for _, m := range n.messages {
		out = append(out, m.Event)
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	users    *repo.UserRepository
	projects *repo.ProjectRepository
	bugs     *repo.BugRepository
	notifier *recordingNotifier

	accounts *AccountService
	project  *ProjectService
	tickets  *TicketService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	f := &fixture{
		db:       gdb,
		users:    repo.NewUserRepository(gdb),
		projects: repo.NewProjectRepository(gdb),
		bugs:     repo.NewBugRepository(gdb),
		notifier: &recordingNotifier{},
	}
	signer := &jwtutil.Signer{Secret: []byte("test-secret"), Issuer: "bugtracker", TTL: 30 * time.Minute}
	f.accounts = NewAccountService(f.users, credential.NewBcrypt(bcrypt.MinCost), signer)
	f.project = NewProjectService(f.projects)
	f.tickets = NewTicketService(f.bugs, f.projects, f.users, f.notifier)
	return f
}

func (f *fixture) user(t *testing.T, email, role string) *models.User {
	t.Helper()
	u, err := f.accounts.Register(context.Background(), email, "secretpassword", role)
	require.NoError(t, err)
	return u
}

func (f *fixture) newProject(t *testing.T, owner *models.User) *models.Project {
	t.Helper()
	p, err := f.project.Create(context.Background(), owner, "Tracker", "Bug tracker backend")
	require.NoError(t, err)
	return p
}

func (f *fixture) newBug(t *testing.T, creator *models.User, p *models.Project, assignees ...*models.User) *models.Bug {
	t.Helper()
	ids := make([]uint, 0, len(assignees))
	for _, a := range assignees {
		ids = append(ids, a.ID)
	}
	b, err := f.tickets.Create(context.Background(), creator, NewBug{
		Title:       "Login fails",
		Description: "500 on submit",
		Severity:    models.SeverityHigh,
		Status:      models.StatusOpen,
		ProjectID:   p.ID,
		AssignedTo:  ids,
	})
	require.NoError(t, err)
	return b
}

func ptr[T any](v T) *T { return &v }
