package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bugtracker/backend/app/dto"
	"bugtracker/backend/app/models"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

const bugPageSize = 100

// statusFilters is the cycle order of the 'f' key; "" shows every status.
var statusFilters = append([]string{""}, models.Statuses...)

type BugsModel struct {
	Client      *Client
	ProjectID   uint
	ProjectName string
	Table       table.Model
	Bugs        []dto.BugResponse
	Filter      int
	Err         error
}

type bugsLoadedMsg struct {
	Bugs []dto.BugResponse
	Err  error
}

// BugSelectedMsg opens the detail view of a bug.
type BugSelectedMsg struct{ ID uint }

// BackMsg returns to the previous screen.
type BackMsg struct{}

func NewBugsModel(c *Client, projectID uint, name string, width, height int) BugsModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Title", Width: max(width-50, 20)},
		{Title: "Severity", Width: 10},
		{Title: "Status", Width: 18},
	}
	return BugsModel{
		Client:      c,
		ProjectID:   projectID,
		ProjectName: name,
		Table:       newTable(columns, height),
	}
}

func (m BugsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BugsModel) status() string { return statusFilters[m.Filter] }

func (m BugsModel) loadCmd() tea.Cmd {
	c, id, status := m.Client, m.ProjectID, m.status()
	return func() tea.Msg {
		bugs, err := c.Bugs(context.Background(), id, status, bugPageSize)
		return bugsLoadedMsg{Bugs: bugs, Err: err}
	}
}

func (m BugsModel) Update(msg tea.Msg) (BugsModel, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case bugsLoadedMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.Err = nil
		m.Bugs = msg.Bugs
		rows := make([]table.Row, 0, len(msg.Bugs))
		for _, b := range msg.Bugs {
			rows = append(rows, table.Row{strconv.FormatUint(uint64(b.ID), 10), b.Title, b.Severity, b.Status})
		}
		m.Table.SetRows(rows)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return BackMsg{} }
		case "r":
			return m, m.loadCmd()
		case "f":
			m.Filter = (m.Filter + 1) % len(statusFilters)
			return m, m.loadCmd()
		case "enter":
			i := m.Table.Cursor()
			if i >= 0 && i < len(m.Bugs) {
				id := m.Bugs[i].ID
				return m, func() tea.Msg { return BugSelectedMsg{ID: id} }
			}
		}
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m BugsModel) View() string {
	var b strings.Builder
	title := fmt.Sprintf("Bugs - project %d", m.ProjectID)
	if m.ProjectName != "" {
		title = fmt.Sprintf("Bugs - %s", m.ProjectName)
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")
	filter := m.status()
	if filter == "" {
		filter = "all"
	}
	b.WriteString(focusedStyle.Render("Status: "+filter) + "\n\n")
	b.WriteString(m.Table.View() + "\n\n")
	b.WriteString(blurredStyle.Render("Enter to open, 'f' to filter by status, 'r' to refresh, Esc to go back"))
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
