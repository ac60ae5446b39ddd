package ui

import (
	"context"
	"fmt"
	"strings"

	"bugtracker/backend/app/dto"
	"bugtracker/backend/app/models"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type BugDetailModel struct {
	Client   *Client
	ID       uint
	Bug      *dto.BugDetailResponse
	Viewport viewport.Model
	Notice   string
	Err      error
}

type bugLoadedMsg struct {
	Bug *dto.BugDetailResponse
	Err error
}

type statusChangedMsg struct {
	Status string
	Err    error
}

// statusKeys maps a key to the status it moves the bug to.
var statusKeys = map[string]string{
	"o": models.StatusOpen,
	"u": models.StatusUnderDevelopment,
	"c": models.StatusClosed,
}

func NewBugDetailModel(c *Client, id uint, width, height int) BugDetailModel {
	vp := viewport.New(max(width-4, 40), max(height-8, 10))
	vp.Style = lipgloss.NewStyle().PaddingLeft(1)
	return BugDetailModel{Client: c, ID: id, Viewport: vp}
}

func (m BugDetailModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BugDetailModel) loadCmd() tea.Cmd {
	c, id := m.Client, m.ID
	return func() tea.Msg {
		b, err := c.Bug(context.Background(), id)
		return bugLoadedMsg{Bug: b, Err: err}
	}
}

func (m BugDetailModel) setStatusCmd(status string) tea.Cmd {
	c, id := m.Client, m.ID
	return func() tea.Msg {
		return statusChangedMsg{Status: status, Err: c.SetStatus(context.Background(), id, status)}
	}
}

func (m BugDetailModel) Update(msg tea.Msg) (BugDetailModel, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case bugLoadedMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.Err = nil
		m.Bug = msg.Bug
		m.Viewport.SetContent(renderBug(msg.Bug))
		return m, nil

	case statusChangedMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.Notice = "Status set to " + msg.Status
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Viewport.Width = max(msg.Width-4, 40)
		m.Viewport.Height = max(msg.Height-8, 10)

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return m, func() tea.Msg { return BackMsg{} }
		}
		if status, ok := statusKeys[msg.String()]; ok {
			m.Notice = ""
			return m, m.setStatusCmd(status)
		}
	}

	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

func renderBug(b *dto.BugDetailResponse) string {
	var s strings.Builder
	field := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + value + "\n")
	}
	field("Title", b.Title)
	sev, ok := severityStyles[b.Severity]
	if ok {
		field("Severity", sev.Render(b.Severity))
	} else {
		field("Severity", b.Severity)
	}
	field("Status", b.Status)
	if b.Project != nil {
		field("Project", fmt.Sprintf("%s (#%d)", b.Project.Name, b.Project.ID))
	} else {
		field("Project", blurredStyle.Render("deleted"))
	}
	field("Created by", fmt.Sprintf("#%d", b.CreatedBy))
	field("Created at", b.CreatedAt.Format("2006-01-02 15:04"))
	assignees := make([]string, 0, len(b.AssignedTo))
	for _, u := range b.AssignedTo {
		assignees = append(assignees, u.Email)
	}
	field("Assigned", strings.Join(assignees, ", "))
	s.WriteString("\n" + b.Description + "\n")
	return s.String()
}

func (m BugDetailModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Bug #%d", m.ID)) + "\n\n")
	if m.Bug != nil {
		b.WriteString(m.Viewport.View() + "\n")
	}
	b.WriteString(blurredStyle.Render("'o' open, 'u' under development, 'c' closed, Esc to go back"))
	if m.Notice != "" {
		b.WriteString("\n" + statusMessageStyle(m.Notice))
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
