package ui

import (
	"context"
	"strings"

	"bugtracker/backend/app/dto"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type LoginModel struct {
	Client   *Client
	Inputs   []textinput.Model
	FocusIdx int
	Err      error
	Busy     bool
}

const (
	inputURL = iota
	inputEmail
	inputPassword
)

// loggedInMsg carries the account behind a freshly issued token.
type loggedInMsg struct {
	Account *dto.AccountResponse
}

type loginFailedMsg struct{ Err error }

func NewLoginModel(c *Client) LoginModel {
	inputs := make([]textinput.Model, 3)

	inputs[inputURL] = textinput.New()
	inputs[inputURL].Prompt = "Server:   "
	inputs[inputURL].SetValue(c.BaseURL)

	inputs[inputEmail] = textinput.New()
	inputs[inputEmail].Placeholder = "you@example.com"
	inputs[inputEmail].Prompt = "Email:    "
	inputs[inputEmail].Focus()

	inputs[inputPassword] = textinput.New()
	inputs[inputPassword].Placeholder = "password"
	inputs[inputPassword].EchoMode = textinput.EchoPassword
	inputs[inputPassword].Prompt = "Password: "

	return LoginModel{Client: c, Inputs: inputs, FocusIdx: inputEmail}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginFailedMsg:
		m.Busy = false
		m.Err = msg.Err
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			if m.FocusIdx == len(m.Inputs)-1 {
				if m.Busy {
					return m, nil
				}
				m.Busy = true
				m.Err = nil
				return m, m.loginCmd()
			}
			m.focus(m.FocusIdx + 1)
			return m, nil
		case tea.KeyTab, tea.KeyDown:
			m.focus(m.FocusIdx + 1)
			return m, nil
		case tea.KeyShiftTab, tea.KeyUp:
			m.focus(m.FocusIdx - 1)
			return m, nil
		}
	}

	cmds := make([]tea.Cmd, len(m.Inputs))
	for i := range m.Inputs {
		m.Inputs[i], cmds[i] = m.Inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m *LoginModel) focus(idx int) {
	m.Inputs[m.FocusIdx].Blur()
	n := len(m.Inputs)
	m.FocusIdx = (idx%n + n) % n
	m.Inputs[m.FocusIdx].Focus()
}

// loginCmd captures the form values so the request runs off the update loop.
func (m LoginModel) loginCmd() tea.Cmd {
	c := m.Client
	base := strings.TrimRight(strings.TrimSpace(m.Inputs[inputURL].Value()), "/")
	email := strings.TrimSpace(m.Inputs[inputEmail].Value())
	password := m.Inputs[inputPassword].Value()
	return func() tea.Msg {
		ctx := context.Background()
		c.BaseURL = base
		if err := c.Login(ctx, email, password); err != nil {
			return loginFailedMsg{Err: err}
		}
		me, err := c.Me(ctx)
		if err != nil {
			return loginFailedMsg{Err: err}
		}
		return loggedInMsg{Account: me}
	}
}

func (m LoginModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Bug Tracker - Sign in") + "\n\n")
	for i := range m.Inputs {
		b.WriteString(m.Inputs[i].View())
		if i < len(m.Inputs)-1 {
			b.WriteRune('\n')
		}
	}
	b.WriteString("\n\n")
	if m.Busy {
		b.WriteString(focusedStyle.Render("Signing in..."))
	} else {
		b.WriteString(blurredStyle.Render("Tab to change fields, Enter to submit, Ctrl+C to quit"))
	}
	if m.Err != nil {
		b.WriteString("\n\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
