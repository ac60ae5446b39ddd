package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type state int

const (
	stateLogin state = iota
	stateProjects
	stateBugs
	stateDetail
)

type RootModel struct {
	State    state
	Client   *Client
	Login    LoginModel
	Projects ProjectsModel
	Bugs     BugsModel
	Detail   BugDetailModel
	Quitting bool
	width    int
	height   int
}

func NewRootModel(c *Client) RootModel {
	return RootModel{
		State:  stateLogin,
		Client: c,
		Login:  NewLoginModel(c),
	}
}

func (m RootModel) Init() tea.Cmd {
	return m.Login.Init()
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		switch m.State {
		case stateProjects:
			m.Projects.Table.SetHeight(max(msg.Height-10, 5))
		case stateBugs:
			m.Bugs.Table.SetHeight(max(msg.Height-10, 5))
		}

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Quitting = true
			return m, tea.Quit
		}

	case loggedInMsg:
		m.State = stateProjects
		m.Projects = NewProjectsModel(m.Client, msg.Account, m.width, m.height)
		return m, m.Projects.Init()

	case ProjectSelectedMsg:
		m.State = stateBugs
		m.Bugs = NewBugsModel(m.Client, msg.ID, msg.Name, m.width, m.height)
		return m, m.Bugs.Init()

	case BugSelectedMsg:
		m.State = stateDetail
		m.Detail = NewBugDetailModel(m.Client, msg.ID, m.width, m.height)
		return m, m.Detail.Init()

	case BackMsg:
		switch m.State {
		case stateDetail:
			m.State = stateBugs
			return m, m.Bugs.loadCmd()
		case stateBugs:
			m.State = stateProjects
			return m, nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.State {
	case stateLogin:
		m.Login, cmd = m.Login.Update(msg)
	case stateProjects:
		m.Projects, cmd = m.Projects.Update(msg)
	case stateBugs:
		m.Bugs, cmd = m.Bugs.Update(msg)
	case stateDetail:
		m.Detail, cmd = m.Detail.Update(msg)
	}
	return m, cmd
}

func (m RootModel) View() string {
	if m.Quitting {
		return "Bye!\n"
	}
	switch m.State {
	case stateLogin:
		return docStyle.Render(m.Login.View())
	case stateProjects:
		return docStyle.Render(m.Projects.View())
	case stateBugs:
		return docStyle.Render(m.Bugs.View())
	case stateDetail:
		return docStyle.Render(m.Detail.View())
	}
	return "Unknown state"
}
