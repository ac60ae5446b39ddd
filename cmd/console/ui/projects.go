package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"bugtracker/backend/app/dto"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ProjectsModel lists the projects a manager owns. Developers, who cannot
// list projects, open a project by id instead.
type ProjectsModel struct {
	Client   *Client
	Account  *dto.AccountResponse
	Table    table.Model
	Projects []dto.ProjectResponse
	JumpTo   textinput.Model
	Jumping  bool
	Err      error
}

type projectsLoadedMsg struct {
	Projects []dto.ProjectResponse
	Err      error
}

// ProjectSelectedMsg opens the bug list of a project.
type ProjectSelectedMsg struct {
	ID   uint
	Name string
}

func NewProjectsModel(c *Client, account *dto.AccountResponse, width, height int) ProjectsModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 30},
		{Title: "Description", Width: max(width-50, 20)},
	}
	jump := textinput.New()
	jump.Prompt = "Project ID: "
	jump.CharLimit = 10
	return ProjectsModel{
		Client:  c,
		Account: account,
		Table:   newTable(columns, height),
		JumpTo:  jump,
	}
}

func (m ProjectsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ProjectsModel) loadCmd() tea.Cmd {
	c := m.Client
	return func() tea.Msg {
		projects, err := c.Projects(context.Background())
		return projectsLoadedMsg{Projects: projects, Err: err}
	}
}

func (m ProjectsModel) Update(msg tea.Msg) (ProjectsModel, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case projectsLoadedMsg:
		var apiErr *APIError
		switch {
		case errors.As(msg.Err, &apiErr) && apiErr.Status == http.StatusUnauthorized:
			// Not a manager; only jumping by id is possible.
			m.Err = nil
			m.Projects = nil
			m.Table.SetRows(nil)
			m.startJump()
		case msg.Err != nil:
			m.Err = msg.Err
		default:
			m.Err = nil
			m.Projects = msg.Projects
			rows := make([]table.Row, 0, len(msg.Projects))
			for _, p := range msg.Projects {
				rows = append(rows, table.Row{strconv.FormatUint(uint64(p.ID), 10), p.Name, p.Description})
			}
			m.Table.SetRows(rows)
		}
		return m, nil

	case tea.KeyMsg:
		if m.Jumping {
			switch msg.Type {
			case tea.KeyEsc:
				m.Jumping = false
				m.JumpTo.Blur()
				m.Table.Focus()
				return m, nil
			case tea.KeyEnter:
				id, err := strconv.ParseUint(strings.TrimSpace(m.JumpTo.Value()), 10, 64)
				if err != nil || id == 0 {
					m.Err = fmt.Errorf("invalid project id %q", m.JumpTo.Value())
					return m, nil
				}
				return m, selectProject(uint(id), "")
			}
			m.JumpTo, cmd = m.JumpTo.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "r":
			return m, m.loadCmd()
		case "g":
			m.startJump()
			return m, textinput.Blink
		case "enter":
			i := m.Table.Cursor()
			if i >= 0 && i < len(m.Projects) {
				return m, selectProject(m.Projects[i].ID, m.Projects[i].Name)
			}
		case "q":
			return m, tea.Quit
		}
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m *ProjectsModel) startJump() {
	m.Jumping = true
	m.Table.Blur()
	m.JumpTo.SetValue("")
	m.JumpTo.Focus()
}

func selectProject(id uint, name string) tea.Cmd {
	return func() tea.Msg { return ProjectSelectedMsg{ID: id, Name: name} }
}

func (m ProjectsModel) View() string {
	var b strings.Builder
	title := "Projects"
	if m.Account != nil {
		title = fmt.Sprintf("Projects - %s (%s)", m.Account.Email, m.Account.Role)
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")
	if len(m.Projects) > 0 {
		b.WriteString(m.Table.View() + "\n\n")
	}
	if m.Jumping {
		b.WriteString(m.JumpTo.View() + "\n\n")
		b.WriteString(blurredStyle.Render("Enter to open, Esc to cancel"))
	} else {
		b.WriteString(blurredStyle.Render("Enter to open, 'g' to open by id, 'r' to refresh, 'q' to quit"))
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
