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
	"github.com/abhisek/prava/internal/ui/layout"
	"github.com/abhisek/prava/internal/ui/theme"
)

type categoriesMsg struct {
	Categories []api.Category
	Err        error
}

// CategoriesScreen lists lesson categories.
type CategoriesScreen struct {
	deps       screen.Deps
	categories []api.Category
	selected   int
	loaded     bool
	errMsg     string
}

var _ screen.Screen = (*CategoriesScreen)(nil)
var _ screen.KeyHintProvider = (*CategoriesScreen)(nil)

// NewCategories creates the category list.
func NewCategories(deps screen.Deps) *CategoriesScreen {
	return &CategoriesScreen{deps: deps}
}

func (s *CategoriesScreen) Init() tea.Cmd {
	client := s.deps.Client
	return func() tea.Msg {
		cats, err := client.Categories(context.Background())
		return categoriesMsg{Categories: cats, Err: err}
	}
}

func (s *CategoriesScreen) Title() string {
	return "Categories"
}

func (s *CategoriesScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *CategoriesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesMsg:
		s.loaded = true
		if msg.Err != nil {
			s.deps.Logger().Warn("load categories failed", "error", msg.Err)
			s.errMsg = api.UserMessage(msg.Err)
			return s, nil
		}
		s.errMsg = ""
		s.categories = msg.Categories
		s.selected = 0
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if s.errMsg != "" {
				s.errMsg = ""
				s.loaded = false
				return s, s.Init()
			}
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.categories)-1 {
				s.selected++
			}
		case "enter":
			if s.selected < len(s.categories) {
				next := NewLessons(s.deps, s.categories[s.selected])
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
		}
	}
	return s, nil
}

func (s *CategoriesScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.RenderError(width, s.errMsg, "Press R to retry.")
	}
	if !s.loaded {
		return layout.RenderLoading(width, "Loading categories...")
	}
	if len(s.categories) == 0 {
		return layout.RenderLoading(width, "No categories yet.")
	}

	cw := layout.ContentWidth(width)
	var b strings.Builder
	b.WriteString("\n")
	for i, c := range s.categories {
		line := c.Name
		if c.LessonCount > 0 {
			line += theme.Subtitle.Render(fmt.Sprintf("  %s", plural(c.LessonCount, "lesson")))
		}
		b.WriteString(listLine(line, i == s.selected))
		if i == s.selected && c.Description != "" {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Width(cw).PaddingLeft(4).Render(theme.Hint.Render(c.Description)))
		}
		b.WriteString("\n")
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(b.String()))
}

func listLine(text string, selected bool) string {
	if selected {
		return theme.Selected.Render("  ▸ ") + theme.Selected.Render(text)
	}
	return "    " + theme.Unselected.Render(text)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
