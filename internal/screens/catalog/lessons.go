package catalog

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/router"
	"github.com/abhisek/prava/internal/screen"
	"github.com/abhisek/prava/internal/screens/lessondetail"
	"github.com/abhisek/prava/internal/screens/placeholder"
	"github.com/abhisek/prava/internal/ui/components"
	"github.com/abhisek/prava/internal/ui/layout"
	"github.com/abhisek/prava/internal/ui/theme"
)

// lessonsMsg and categoryMsg are keyed by the category slug they were
// requested for.
type lessonsMsg struct {
	Slug    string
	Lessons []api.LessonSummary
	Err     error
}

type categoryMsg struct {
	Slug     string
	Category *api.Category
	Err      error
}

// LessonsScreen lists the lessons of one category with their progress.
type LessonsScreen struct {
	deps     screen.Deps
	category api.Category
	lessons  []api.LessonSummary
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*LessonsScreen)(nil)
var _ screen.KeyHintProvider = (*LessonsScreen)(nil)

// NewLessons creates the lesson list for category.
func NewLessons(deps screen.Deps, category api.Category) *LessonsScreen {
	return &LessonsScreen{deps: deps, category: category}
}

func (s *LessonsScreen) Init() tea.Cmd {
	client, slug := s.deps.Client, s.category.Slug
	return tea.Batch(
		func() tea.Msg {
			lessons, err := client.CategoryLessons(context.Background(), slug)
			return lessonsMsg{Slug: slug, Lessons: lessons, Err: err}
		},
		func() tea.Msg {
			c, err := client.Category(context.Background(), slug)
			return categoryMsg{Slug: slug, Category: c, Err: err}
		},
	)
}

func (s *LessonsScreen) Title() string {
	return s.category.Name
}

func (s *LessonsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Q", Description: "Category quiz"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LessonsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case lessonsMsg:
		if msg.Slug != s.category.Slug {
			return s, nil
		}
		s.loaded = true
		if msg.Err != nil {
			s.deps.Logger().Warn("load lessons failed", "category", s.category.Slug, "error", msg.Err)
			s.errMsg = api.UserMessage(msg.Err)
			return s, nil
		}
		s.lessons = msg.Lessons
		return s, nil

	case categoryMsg:
		if msg.Slug != s.category.Slug {
			return s, nil
		}
		// The list entry is enough to render; a fresh copy only updates the
		// description.
		if msg.Err != nil {
			s.deps.Logger().Debug("refresh category failed", "category", s.category.Slug, "error", msg.Err)
			return s, nil
		}
		s.category = *msg.Category
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.lessons)-1 {
				s.selected++
			}
		case "enter":
			if s.selected < len(s.lessons) {
				next := lessondetail.New(s.deps, s.lessons[s.selected].ID)
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
		case "q":
			next := placeholder.New("Category quiz",
				fmt.Sprintf("A quiz covering every lesson in %s\nis coming soon.", s.category.Name))
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}
	}
	return s, nil
}

func (s *LessonsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.RenderError(width, s.errMsg, "Press Esc to go back.")
	}
	if !s.loaded {
		return layout.RenderLoading(width, "Loading lessons...")
	}

	cw := layout.ContentWidth(width)
	var b strings.Builder
	b.WriteString("\n")
	if s.category.Description != "" {
		b.WriteString(theme.Subtitle.Render(s.category.Description))
		b.WriteString("\n\n")
	}
	if len(s.lessons) == 0 {
		b.WriteString(theme.Hint.Render("No lessons in this category yet."))
	}

	for i, l := range s.lessons {
		title := l.Title
		if l.Difficulty != "" {
			title += theme.Subtitle.Render("  " + l.Difficulty)
		}
		b.WriteString(listLine(title, i == s.selected))
		b.WriteString("\n")
		bar := components.NewProgressBar("", int(l.Progress), true, cw-4)
		b.WriteString("    " + bar.View())
		b.WriteString("\n\n")
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(b.String()))
}
