package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prava/internal/screen"
	"github.com/abhisek/prava/internal/store"
	"github.com/abhisek/prava/internal/ui/layout"
	"github.com/abhisek/prava/internal/ui/theme"
)

// pageSize is how many attempts the screen loads.
const pageSize = 50

type historyLoadedMsg struct {
	Attempts []store.AttemptEvent
	Err      error
}

// HistoryScreen lists quiz attempts recorded on this device.
type HistoryScreen struct {
	deps     screen.Deps
	attempts []store.AttemptEvent
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen. deps.Events must be set.
func New(deps screen.Deps) *HistoryScreen {
	return &HistoryScreen{
		deps:     deps,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	events := s.deps.Events
	return func() tea.Msg {
		attempts, err := events.RecentAttempts(context.Background(), store.QueryOpts{Limit: pageSize})
		return historyLoadedMsg{Attempts: attempts, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.deps.Logger().Warn("load attempt history failed", "error", msg.Err)
			s.errMsg = msg.Err.Error()
		} else {
			s.attempts = msg.Attempts
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.RenderError(width, "Error: "+s.errMsg, "")
	}
	if !s.loaded {
		return layout.RenderLoading(width, "Loading history...")
	}
	if len(s.attempts) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No quizzes yet. Take one from the home screen!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, a := range s.attempts {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-24s %4.0f%%  %d/%d correct",
			prefix, a.Timestamp.Local().Format("Jan 02, 2006 15:04"), titleOf(a), a.Score, a.Correct, a.Total)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    %s quiz, %d of %d answered", a.Mode, a.Answered, a.Total)
			if a.LessonID > 0 {
				detail += fmt.Sprintf(", lesson #%d", a.LessonID)
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func titleOf(a store.AttemptEvent) string {
	title := a.Title
	if title == "" {
		title = "Random quiz"
	}
	if len([]rune(title)) > 24 {
		title = string([]rune(title)[:23]) + "…"
	}
	return title
}
