package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/myfiredeal/firedeal/internal/session"
)

// loginMode selects between the sign-in and sign-up forms.
type loginMode int

const (
	modeSignIn loginMode = iota
	modeSignUp
)

// Field indexes into LoginModel.inputs.
const (
	fieldEmail = iota
	fieldPassword
	fieldFullName
)

// LoginModel is the authentication screen. One form, two modes: sign-in
// (email + password) and sign-up (email + password + full name).
type LoginModel struct {
	holder *session.Holder
	ctx    context.Context

	mode    loginMode
	inputs  []textinput.Model
	focus   int
	spinner spinner.Model
	loading bool
	banner  banner

	width  int
	height int
}

// NewLoginModel creates the login screen in sign-in mode.
func NewLoginModel(holder *session.Holder, ctx context.Context) LoginModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	fullName := textinput.New()
	fullName.Placeholder = "full name"
	fullName.CharLimit = 120

	return LoginModel{
		holder:  holder,
		ctx:     ctx,
		mode:    modeSignIn,
		inputs:  []textinput.Model{email, password, fullName},
		spinner: sp,
	}
}

// Init initializes the login screen.
func (m LoginModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.WindowSize())
}

// Update handles messages.
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SignedInMsg:
		// Success is handled at the app root; only failures reach here
		m.loading = false
		if msg.Err != nil {
			m.banner = errorBanner(msg.Err.Error())
		}
		return m, nil

	case SignedUpMsg:
		m.loading = false
		if msg.Err != nil {
			m.banner = errorBanner(msg.Err.Error())
			return m, nil
		}
		// Back to sign-in so the user can log in once the email is confirmed
		m.mode = modeSignIn
		m.banner = successBanner("Account created. Check your email, then sign in.")
		m.inputs[fieldPassword].SetValue("")
		m.inputs[fieldFullName].SetValue("")
		m.setFocus(fieldEmail)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, m.updateInputs(msg)
}

// handleKeyPress processes keyboard input.
func (m LoginModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		// One submission at a time
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+t":
		// Toggle between sign-in and sign-up
		if m.mode == modeSignIn {
			m.mode = modeSignUp
		} else {
			m.mode = modeSignIn
		}
		m.banner = banner{}
		if m.focus >= m.fieldCount() {
			m.setFocus(fieldEmail)
		}
		return m, nil

	case "tab", "down":
		m.setFocus((m.focus + 1) % m.fieldCount())
		return m, textinput.Blink

	case "shift+tab", "up":
		m.setFocus((m.focus + m.fieldCount() - 1) % m.fieldCount())
		return m, textinput.Blink

	case "enter":
		return m.submit()
	}

	return m, m.updateInputs(msg)
}

// submit validates presence of the credentials and dispatches the
// provider call.
func (m LoginModel) submit() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()
	if email == "" || password == "" {
		m.banner = errorBanner("Email and password are required")
		return m, nil
	}

	m.loading = true
	m.banner = banner{}

	if m.mode == modeSignUp {
		fullName := strings.TrimSpace(m.inputs[fieldFullName].Value())
		return m, tea.Batch(m.spinner.Tick, m.signUp(email, password, fullName))
	}
	return m, tea.Batch(m.spinner.Tick, m.signIn(email, password))
}

// signIn creates a command that authenticates against the provider.
func (m LoginModel) signIn(email, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := m.holder.SignIn(m.ctx, email, password)
		return SignedInMsg{Session: sess, Err: err}
	}
}

// signUp creates a command that registers a new account and writes the
// profile display name.
func (m LoginModel) signUp(email, password, fullName string) tea.Cmd {
	return func() tea.Msg {
		err := m.holder.SignUp(m.ctx, email, password, fullName)
		return SignedUpMsg{Err: err}
	}
}

// fieldCount returns the number of visible inputs for the current mode.
func (m LoginModel) fieldCount() int {
	if m.mode == modeSignUp {
		return 3
	}
	return 2
}

// setFocus focuses the input at idx and blurs the rest.
func (m *LoginModel) setFocus(idx int) {
	m.focus = idx
	for i := range m.inputs {
		if i == idx {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// updateInputs forwards a message to the focused input.
func (m *LoginModel) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

// View renders the login screen.
func (m LoginModel) View() string {
	var b strings.Builder

	title := "Sign in"
	if m.mode == modeSignUp {
		title = "Create account"
	}
	b.WriteString(TitleStyle.Render("MY FIRE DEAL · " + title))
	b.WriteString("\n\n")

	b.WriteString(LabelStyle.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.inputs[fieldEmail].View())
	b.WriteString("\n\n")

	b.WriteString(LabelStyle.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.inputs[fieldPassword].View())
	b.WriteString("\n")

	if m.mode == modeSignUp {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Full name"))
		b.WriteString("\n")
		b.WriteString(m.inputs[fieldFullName].View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.loading {
		action := "Signing in..."
		if m.mode == modeSignUp {
			action = "Creating account..."
		}
		b.WriteString(m.spinner.View() + " " + action)
	} else if m.banner.text != "" {
		b.WriteString(m.banner.View())
	}
	b.WriteString("\n")

	toggleHint := "ctrl+t: create an account instead"
	if m.mode == modeSignUp {
		toggleHint = "ctrl+t: sign in instead"
	}
	b.WriteString(HelpStyle.Render("enter: submit • tab: next field • " + toggleHint + " • ctrl+c: quit"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
