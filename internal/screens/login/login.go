package login

import (
	"context"
	"errors"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/auth"
	"github.com/abhisek/prava/internal/screen"
	"github.com/abhisek/prava/internal/ui/components"
	"github.com/abhisek/prava/internal/ui/layout"
	"github.com/abhisek/prava/internal/ui/theme"
)

type mode int

const (
	modeLogin mode = iota
	modeRegister
)

// Field names double as the keys of a field-keyed 400 body.
const (
	fieldUsername = "username"
	fieldEmail    = "email"
	fieldPassword = "password"
)

type authDoneMsg struct {
	from    *LoginScreen
	Session auth.Session
	Err     error
}

// LoginScreen is the sign-in form with a toggle to the registration form.
type LoginScreen struct {
	deps   screen.Deps
	mode   mode
	inputs map[string]*components.TextInput
	focus  int

	submitting bool
	errMsg     string
	notice     string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates the login screen. notice is shown above the form, for
// example after a session expired.
func New(deps screen.Deps, notice string) *LoginScreen {
	username := components.NewTextInput("Username", "your username", 150)
	email := components.NewTextInput("Email", "you@example.com", 254)
	password := components.NewPasswordInput("Password")
	return &LoginScreen{
		deps: deps,
		inputs: map[string]*components.TextInput{
			fieldUsername: &username,
			fieldEmail:    &email,
			fieldPassword: &password,
		},
		notice: notice,
	}
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.focusField(0)
}

func (s *LoginScreen) Title() string {
	if s.mode == modeRegister {
		return "Create account"
	}
	return "Sign in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	toggle := "Create account"
	if s.mode == modeRegister {
		toggle = "Have an account"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+R", Description: toggle},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// fields lists the visible fields of the current mode in tab order.
func (s *LoginScreen) fields() []string {
	if s.mode == modeRegister {
		return []string{fieldUsername, fieldEmail, fieldPassword}
	}
	return []string{fieldUsername, fieldPassword}
}

func (s *LoginScreen) focusField(i int) tea.Cmd {
	fields := s.fields()
	s.focus = (i + len(fields)) % len(fields)
	for _, in := range s.inputs {
		in.Blur()
	}
	return s.inputs[fields[s.focus]].Focus()
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		if msg.from != s {
			return s, nil
		}
		s.submitting = false
		if msg.Err != nil {
			s.applyError(msg.Err)
			return s, nil
		}
		// The app swaps in the dashboard when the session changes.
		s.notice = "Signed in."
		return s, nil

	case tea.KeyMsg:
		if s.submitting {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			return s, s.focusField(s.focus + 1)
		case "shift+tab", "up":
			return s, s.focusField(s.focus - 1)
		case "ctrl+r":
			return s, s.toggle()
		case "enter":
			if s.focus < len(s.fields())-1 {
				return s, s.focusField(s.focus + 1)
			}
			return s, s.submit()
		}
	}

	in := s.inputs[s.fields()[s.focus]]
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return s, cmd
}

func (s *LoginScreen) toggle() tea.Cmd {
	if s.mode == modeLogin {
		s.mode = modeRegister
	} else {
		s.mode = modeLogin
	}
	s.clearErrors()
	s.notice = ""
	return s.focusField(0)
}

func (s *LoginScreen) clearErrors() {
	s.errMsg = ""
	for _, in := range s.inputs {
		in.Err = ""
	}
}

// submit validates locally and starts the login or register flow.
func (s *LoginScreen) submit() tea.Cmd {
	s.clearErrors()
	missing := false
	for _, f := range s.fields() {
		if strings.TrimSpace(s.inputs[f].Value()) == "" {
			s.inputs[f].Err = "This field is required."
			missing = true
		}
	}
	if missing {
		return nil
	}

	s.submitting = true
	s.notice = ""
	username := strings.TrimSpace(s.inputs[fieldUsername].Value())
	password := s.inputs[fieldPassword].Value()
	client, store := s.deps.Client, s.deps.Session

	if s.mode == modeRegister {
		req := api.RegisterRequest{
			Username: username,
			Email:    strings.TrimSpace(s.inputs[fieldEmail].Value()),
			Password: password,
		}
		return func() tea.Msg {
			sess, err := auth.Register(context.Background(), client, store, req)
			return authDoneMsg{from: s, Session: sess, Err: err}
		}
	}
	return func() tea.Msg {
		sess, err := auth.Login(context.Background(), client, store, username, password)
		return authDoneMsg{from: s, Session: sess, Err: err}
	}
}

// applyError routes field-keyed messages to their inputs and everything
// else to the form-level error line.
func (s *LoginScreen) applyError(err error) {
	s.deps.Logger().Warn("authentication failed", "error", err)

	var apiErr *api.Error
	if !errors.As(err, &apiErr) || !api.IsValidation(err) {
		s.errMsg = api.UserMessage(err)
		return
	}

	fields := apiErr.FieldErrors()
	if len(fields) == 0 {
		s.errMsg = apiErr.Message
		return
	}
	var rest []string
	for field, msgs := range fields {
		if in, ok := s.inputs[field]; ok && s.visible(field) {
			in.Err = strings.Join(msgs, " ")
			continue
		}
		rest = append(rest, field+": "+strings.Join(msgs, " "))
	}
	sort.Strings(rest)
	s.errMsg = strings.Join(rest, "\n")
}

func (s *LoginScreen) visible(field string) bool {
	for _, f := range s.fields() {
		if f == field {
			return true
		}
	}
	return false
}

func (s *LoginScreen) View(width, height int) string {
	cw := min(layout.ContentWidth(width), 50)
	var b strings.Builder

	b.WriteString(theme.Title.Render(s.Title()))
	b.WriteString("\n")
	if s.mode == modeRegister {
		b.WriteString(theme.Subtitle.Render("Start learning English today."))
	} else {
		b.WriteString(theme.Subtitle.Render("Welcome back. Let's keep your streak going."))
	}
	b.WriteString("\n\n")

	if s.notice != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render(s.notice))
		b.WriteString("\n\n")
	}

	for _, f := range s.fields() {
		b.WriteString(s.inputs[f].View())
		b.WriteString("\n\n")
	}

	switch {
	case s.submitting:
		b.WriteString(theme.Hint.Render("Signing in..."))
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	}

	form := lipgloss.NewStyle().Width(cw).Render(b.String())
	return components.Center(components.Card(form, cw+6, true), width, height)
}
