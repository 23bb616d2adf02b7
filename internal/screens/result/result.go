package result

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/router"
	"github.com/abhisek/prava/internal/screen"
	"github.com/abhisek/prava/internal/store"
	"github.com/abhisek/prava/internal/ui/components"
	"github.com/abhisek/prava/internal/ui/layout"
	"github.com/abhisek/prava/internal/ui/theme"
)

// Attempt modes, as stored in the local attempt log.
const (
	ModeLesson = "lesson"
	ModeRandom = "random"
)

// Attempt is a scored quiz submission together with what was asked.
type Attempt struct {
	Mode     string
	LessonID int
	Title    string
	Items    []api.QuizItem
	Answered int
	Result   *api.QuizResult
}

type recordedMsg struct {
	AttemptID string
	Err       error
}

// ResultScreen shows the score of a submitted quiz.
type ResultScreen struct {
	id       string // local attempt id
	deps     screen.Deps
	attempt  Attempt
	prompts  map[string]string
	recorded bool
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates the result screen for a.
func New(deps screen.Deps, a Attempt) *ResultScreen {
	prompts := make(map[string]string, len(a.Items))
	for _, q := range a.Items {
		prompts[q.Key()] = q.Prompt
	}
	if a.Result == nil {
		a.Result = &api.QuizResult{}
	}
	return &ResultScreen{id: uuid.New().String(), deps: deps, attempt: a, prompts: prompts}
}

// Init records the attempt locally and credits the earned XP to the
// cached profile so the header is current before the next dashboard load.
func (s *ResultScreen) Init() tea.Cmd {
	id, deps, a := s.id, s.deps, s.attempt
	return func() tea.Msg {
		ctx := context.Background()
		if deps.Session != nil && a.Result.XPEarned > 0 {
			if u := deps.Session.Session().User; u != nil {
				u.XP += a.Result.XPEarned
				if err := deps.Session.SetUser(ctx, u); err != nil {
					deps.Logger().Warn("update cached xp failed", "error", err)
				}
			}
		}
		if deps.Events == nil {
			return recordedMsg{AttemptID: id}
		}
		err := deps.Events.AppendAttemptEvent(ctx, store.AttemptEventData{
			AttemptID: id,
			Mode:      a.Mode,
			LessonID:  a.LessonID,
			Title:     a.Title,
			Answered:  a.Answered,
			Total:     len(a.Items),
			Correct:   a.Result.Correct,
			Score:     a.Result.Score,
		})
		if err != nil {
			deps.Logger().Warn("record quiz attempt failed", "mode", a.Mode, "error", err)
		}
		return recordedMsg{AttemptID: id, Err: err}
	}
}

func (s *ResultScreen) Title() string {
	return "Quiz result"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Done"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case recordedMsg:
		if msg.AttemptID != s.id {
			return s, nil
		}
		s.recorded = msg.Err == nil
		return s, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)
	r := s.attempt.Result

	heading := "Quiz complete!"
	if s.attempt.Title != "" {
		heading = s.attempt.Title + ": quiz complete!"
	}

	var sections []string
	sections = append(sections, theme.Title.Render(heading))

	scoreStyle := lipgloss.NewStyle().Bold(true).Foreground(scoreColor(r.Score))
	stats := scoreStyle.Render(fmt.Sprintf("%.0f%%", r.Score)) + "   " +
		theme.Body.Render(fmt.Sprintf("%d of %d correct", r.Correct, r.Total))
	if r.XPEarned > 0 {
		stats += "   " + lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(fmt.Sprintf("+%d XP", r.XPEarned))
	}
	if skipped := len(s.attempt.Items) - s.attempt.Answered; skipped > 0 {
		stats += "\n" + theme.Hint.Render(fmt.Sprintf("%d skipped", skipped))
	}
	sections = append(sections, components.Card(stats, cw, false))

	if details := s.renderDetails(); details != "" {
		sections = append(sections, details)
	}

	content := lipgloss.NewStyle().Width(cw).Render(strings.Join(sections, "\n\n"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, "\n"+content)
}

func (s *ResultScreen) renderDetails() string {
	details := s.attempt.Result.Details
	if len(details) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Answers"))
	for _, d := range details {
		prompt := s.prompts[d.QuestionID]
		if prompt == "" {
			prompt = "Question " + d.QuestionID
		}
		b.WriteString("\n")
		if d.Correct {
			b.WriteString(theme.Correct.Render("✓ ") + theme.Body.Render(prompt))
			continue
		}
		b.WriteString(theme.Incorrect.Render("✗ ") + theme.Body.Render(prompt))
		if d.Expected != "" {
			b.WriteString("\n    " + theme.Hint.Render("expected: "+d.Expected))
		}
	}
	return b.String()
}

func scoreColor(score float64) color.Color {
	switch {
	case score >= 80:
		return theme.Success
	case score >= 50:
		return theme.Accent
	}
	return theme.Error
}
