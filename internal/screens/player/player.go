package player

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/lesson"
	"github.com/abhisek/prava/internal/router"
	"github.com/abhisek/prava/internal/screen"
	"github.com/abhisek/prava/internal/ui/components"
	"github.com/abhisek/prava/internal/ui/layout"
	"github.com/abhisek/prava/internal/ui/theme"
)

type progressSavedMsg struct {
	Percent int
	Err     error
}

// PlayerScreen walks a learner through a lesson one page at a time.
type PlayerScreen struct {
	deps   screen.Deps
	detail *api.LessonDetail
	player *lesson.Player

	input  components.TextInput
	picker components.TokenPicker

	status string
}

var _ screen.Screen = (*PlayerScreen)(nil)
var _ screen.KeyHintProvider = (*PlayerScreen)(nil)

// New creates a player over pages flattened from d.
func New(deps screen.Deps, d *api.LessonDetail, pages []lesson.Page) *PlayerScreen {
	return &PlayerScreen{
		deps:   deps,
		detail: d,
		player: lesson.NewPlayer(pages),
	}
}

func (s *PlayerScreen) Init() tea.Cmd {
	return tea.Batch(s.syncInput(), s.reportProgress())
}

func (s *PlayerScreen) Title() string {
	return s.detail.Title
}

func (s *PlayerScreen) KeyHints() []layout.KeyHint {
	page := s.player.Current()
	switch {
	case page.Kind == lesson.PageBuild:
		return []layout.KeyHint{
			{Key: "1-9", Description: "Pick word"},
			{Key: "Bksp", Description: "Undo"},
			{Key: "Enter", Description: "Check"},
			{Key: "Shift+Tab", Description: "Back"},
		}
	case page.Kind.Interactive():
		return []layout.KeyHint{
			{Key: "Enter", Description: "Check"},
			{Key: "Shift+Tab", Description: "Back"},
			{Key: "Esc", Description: "Leave"},
		}
	case page.Kind == lesson.PageTeach && !s.player.Revealed():
		return []layout.KeyHint{
			{Key: "Space", Description: "Reveal"},
			{Key: "←", Description: "Back"},
			{Key: "Esc", Description: "Leave"},
		}
	case s.player.AtEnd():
		return []layout.KeyHint{
			{Key: "Enter", Description: "Finish"},
			{Key: "←", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "→/Enter", Description: "Next"},
		{Key: "←", Description: "Back"},
		{Key: "Esc", Description: "Leave"},
	}
}

// reportProgress posts the new high-water percent, if any. Failures are
// logged and otherwise ignored.
func (s *PlayerScreen) reportProgress() tea.Cmd {
	pct, ok := s.player.TakeProgress()
	if !ok {
		return nil
	}
	client, lessonID, log := s.deps.Client, s.detail.ID, s.deps.Logger()
	return func() tea.Msg {
		err := client.UpdateProgress(context.Background(), api.ProgressUpdate{LessonID: lessonID, Percent: pct})
		if err != nil {
			log.Warn("save lesson progress failed", "lesson_id", lessonID, "percent", pct, "error", err)
		}
		return progressSavedMsg{Percent: pct, Err: err}
	}
}

// syncInput rebuilds the answer widget for the current page from the
// stored response.
func (s *PlayerScreen) syncInput() tea.Cmd {
	page := s.player.Current()
	resp := s.player.Response()
	switch page.Kind {
	case lesson.PageListen, lesson.PageDictation:
		s.input = components.NewTextInput("", "Type what you hear...", 200)
		s.input.SetValue(resp.Text)
		return s.input.Focus()
	case lesson.PageBuild:
		var pool []string
		if page.Task != nil {
			pool = page.Task.Tokens
		}
		s.picker = components.NewTokenPicker(pool, resp.Tokens)
	}
	return nil
}

func (s *PlayerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressSavedMsg:
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if k := s.player.Current().Kind; k == lesson.PageListen || k == lesson.PageDictation {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PlayerScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	page := s.player.Current()
	key := msg.String()

	if key == "shift+tab" {
		return s, s.prev()
	}

	switch page.Kind {
	case lesson.PageListen, lesson.PageDictation:
		if key == "enter" {
			return s, s.checkOrAdvance()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		s.player.SetText(s.input.Value())
		s.status = ""
		return s, cmd

	case lesson.PageBuild:
		if key == "enter" || key == "tab" {
			return s, s.checkOrAdvance()
		}
		var changed bool
		s.picker, changed = s.picker.Update(msg)
		if changed {
			if answer := s.picker.Answer(); len(answer) == 0 {
				s.player.Clear()
			} else {
				s.player.SetTokens(answer)
			}
			s.status = ""
		}
		return s, nil
	}

	switch key {
	case "left", "h":
		return s, s.prev()
	case "space", " ":
		if page.Kind == lesson.PageTeach {
			s.player.Reveal()
			return s, nil
		}
		return s, s.next()
	case "right", "l", "enter", "tab":
		if page.Kind == lesson.PageTeach && !s.player.Revealed() {
			s.player.Reveal()
			return s, nil
		}
		if s.player.AtEnd() {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, s.next()
	}
	return s, nil
}

// checkOrAdvance shows feedback for a fresh answer on the first press and
// moves on with the second.
func (s *PlayerScreen) checkOrAdvance() tea.Cmd {
	if s.player.Response().Empty() {
		s.status = "Answer first, then press Enter."
		return nil
	}
	if !s.player.Revealed() {
		s.player.Reveal()
		return nil
	}
	return s.next()
}

func (s *PlayerScreen) next() tea.Cmd {
	if err := s.player.Next(); err != nil {
		if errors.Is(err, lesson.ErrBlocked) {
			s.status = "Finish this step first."
		}
		return nil
	}
	s.status = ""
	return tea.Batch(s.syncInput(), s.reportProgress())
}

func (s *PlayerScreen) prev() tea.Cmd {
	if err := s.player.Prev(); err != nil {
		return nil
	}
	s.status = ""
	return s.syncInput()
}

func (s *PlayerScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)
	page := s.player.Current()

	step := fmt.Sprintf("Step %d of %d", s.player.Index()+1, s.player.Len())
	bar := components.NewProgressBar(step, s.player.Percent(), true, cw)

	var sections []string
	sections = append(sections, bar.View())
	if page.Title != "" {
		sections = append(sections, theme.Title.Render(page.Title))
	}
	sections = append(sections, s.renderPage(page, cw))

	if s.status != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Accent).Render(s.status))
	}

	content := lipgloss.NewStyle().Width(cw).Render(strings.Join(sections, "\n\n"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, "\n"+content)
}

func (s *PlayerScreen) renderPage(page lesson.Page, cw int) string {
	bold := lipgloss.NewStyle().Bold(true).Foreground(theme.Text)

	switch page.Kind {
	case lesson.PageOverview, lesson.PageReview:
		return components.Markdown(page.Body, cw)

	case lesson.PageTeach:
		if page.Vocab == nil {
			return ""
		}
		v := page.Vocab
		out := bold.Render(v.Term)
		if v.Pronunciation != "" {
			out += "  " + theme.Subtitle.Render("/"+v.Pronunciation+"/")
		}
		if !s.player.Revealed() {
			return out + "\n\n" + theme.Hint.Render("Press Space to see the translation.")
		}
		out += "\n\n" + lipgloss.NewStyle().Foreground(theme.Secondary).Render(v.Translation)
		if v.Example != nil {
			out += "\n\n" + renderExample(*v.Example)
		}
		return out

	case lesson.PageGrammar:
		out := lipgloss.NewStyle().Width(cw).Render(page.Body)
		if page.Grammar != nil {
			for _, ex := range page.Grammar.Examples {
				out += "\n\n" + renderExample(ex)
			}
		}
		return out

	case lesson.PagePattern:
		if page.Example == nil {
			return ""
		}
		return renderExample(*page.Example)

	case lesson.PageBuild:
		return s.renderTask(page, s.picker.View(), strings.Join(s.player.Response().Tokens, " "))

	case lesson.PageListen, lesson.PageDictation:
		return s.renderTask(page, s.input.View(), s.player.Response().Text)
	}
	return ""
}

func (s *PlayerScreen) renderTask(page lesson.Page, widget, answer string) string {
	if page.Task == nil {
		return widget
	}
	t := page.Task
	out := theme.Body.Render(t.Prompt)
	if t.AudioURL != "" {
		out += "\n" + theme.Hint.Render("audio: "+t.AudioURL)
	}
	out += "\n\n" + widget

	if s.player.Revealed() && t.Text != "" {
		if sameText(answer, t.Text) {
			out += "\n\n" + theme.Correct.Render("Correct!")
		} else {
			out += "\n\n" + theme.Incorrect.Render("Not quite.") + " " +
				theme.Body.Render("Answer: "+t.Text)
		}
		out += "\n" + theme.Hint.Render("Press Enter to continue.")
	}
	return out
}

func renderExample(ex lesson.Example) string {
	out := lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(ex.English)
	if ex.Romanian != "" {
		out += "\n" + theme.Subtitle.Render(ex.Romanian)
	}
	return out
}

// sameText compares answers ignoring case, punctuation and spacing.
func sameText(a, b string) bool {
	return normalize(a) == normalize(b)
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
