package lessondetail

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/lesson"
	"github.com/abhisek/prava/internal/router"
	"github.com/abhisek/prava/internal/screen"
	"github.com/abhisek/prava/internal/screens/flashcards"
	"github.com/abhisek/prava/internal/screens/player"
	quizscreen "github.com/abhisek/prava/internal/screens/quiz"
	"github.com/abhisek/prava/internal/ui/components"
	"github.com/abhisek/prava/internal/ui/layout"
	"github.com/abhisek/prava/internal/ui/theme"
)

// detailMsg carries the lesson fetched for ID. A screen drops results for
// any other lesson.
type detailMsg struct {
	ID     int
	Detail *api.LessonDetail
	Err    error
}

// LessonDetailScreen shows one lesson and the ways to study it.
type LessonDetailScreen struct {
	deps    screen.Deps
	id      int
	detail  *api.LessonDetail
	content *lesson.Content
	pages   []lesson.Page
	menu    components.Menu
	loaded  bool
	errMsg  string
	warning string
}

var _ screen.Screen = (*LessonDetailScreen)(nil)
var _ screen.KeyHintProvider = (*LessonDetailScreen)(nil)

// New creates the detail screen for lesson id.
func New(deps screen.Deps, id int) *LessonDetailScreen {
	return &LessonDetailScreen{deps: deps, id: id}
}

func (s *LessonDetailScreen) Init() tea.Cmd {
	client, id := s.deps.Client, s.id
	return func() tea.Msg {
		d, err := client.Lesson(context.Background(), id)
		return detailMsg{ID: id, Detail: d, Err: err}
	}
}

func (s *LessonDetailScreen) Title() string {
	if s.detail != nil {
		return s.detail.Title
	}
	return "Lesson"
}

func (s *LessonDetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LessonDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case detailMsg:
		if msg.ID != s.id {
			return s, nil
		}
		s.loaded = true
		if msg.Err != nil {
			s.deps.Logger().Warn("load lesson failed", "lesson_id", s.id, "error", msg.Err)
			s.errMsg = api.UserMessage(msg.Err)
			return s, nil
		}
		s.setDetail(msg.Detail)
		return s, nil
	}

	if s.detail == nil {
		return s, nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

// setDetail parses the structured content and builds the action menu.
// Unreadable content falls back to flashcard pages.
func (s *LessonDetailScreen) setDetail(d *api.LessonDetail) {
	s.detail = d
	content, err := lesson.ParseContent(d.Content)
	if err != nil {
		s.deps.Logger().Warn("lesson content rejected", "lesson_id", d.ID, "error", err)
		s.warning = "This lesson's content could not be read; the player shows its flashcards instead."
		content = nil
	}
	s.content = content
	s.pages = lesson.Flatten(d, content)

	deps, pages := s.deps, s.pages
	s.menu = components.NewMenu([]components.MenuItem{
		{
			Label: "Play lesson",
			Hint:  plural(len(pages), "step"),
			Action: func() tea.Cmd {
				next := player.New(deps, d, pages)
				return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			},
		},
		{
			Label:    "Flashcards",
			Hint:     plural(len(d.Flashcards), "card"),
			Disabled: len(d.Flashcards) == 0,
			Action: func() tea.Cmd {
				next := flashcards.New(d)
				return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			},
		},
		{
			Label:    "Take quiz",
			Hint:     plural(len(d.Questions), "question"),
			Disabled: len(d.Questions) == 0,
			Action: func() tea.Cmd {
				next := quizscreen.NewLesson(deps, d)
				return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			},
		},
	})
}

func (s *LessonDetailScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.RenderError(width, s.errMsg, "Press Esc to go back.")
	}
	if !s.loaded || s.detail == nil {
		return layout.RenderLoading(width, "Loading lesson...")
	}

	cw := layout.ContentWidth(width)
	var sections []string

	head := theme.Title.Render(s.detail.Title)
	if s.detail.Difficulty != "" {
		head += "  " + theme.Subtitle.Render(s.detail.Difficulty)
	}
	sections = append(sections, head)

	if body := strings.TrimSpace(s.detail.BodyMD); body != "" {
		sections = append(sections, components.Markdown(body, cw))
	}
	if s.warning != "" {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Foreground(theme.Accent).Render(s.warning))
	}
	sections = append(sections, s.menu.View())

	content := lipgloss.NewStyle().Width(cw).Render(strings.Join(sections, "\n\n"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, "\n"+content)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
