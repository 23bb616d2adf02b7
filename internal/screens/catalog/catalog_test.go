package catalog

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/router"
	"github.com/abhisek/prava/internal/screen"
	"github.com/abhisek/prava/internal/screens/lessondetail"
	"github.com/abhisek/prava/internal/screens/placeholder"
	"github.com/abhisek/prava/internal/screens/screentest"
)

func testClient() *api.MockClient {
	return &api.MockClient{
		CategoryList: []api.Category{
			{ID: 1, Slug: "basics", Name: "Basics", Description: "First words", LessonCount: 2},
			{ID: 2, Slug: "travel", Name: "Travel", LessonCount: 1},
		},
		Lessons: map[string][]api.LessonSummary{
			"basics": {
				{ID: 10, Title: "Greetings", Difficulty: "A1", Progress: 50},
				{ID: 11, Title: "Numbers", Progress: 0},
			},
		},
	}
}

// run executes cmd, expanding batches, and feeds every message back to s.
func run(t *testing.T, s screen.Screen, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			run(t, s, c)
		}
	case nil:
	default:
		s.Update(msg)
	}
}

func pushed(t *testing.T, cmd tea.Cmd) screen.Screen {
	t.Helper()
	msg, ok := screentest.Exec(t, cmd).(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg")
	}
	return msg.Screen
}

func TestCategoriesLoad(t *testing.T) {
	s := NewCategories(screentest.Deps(testClient()))
	if !strings.Contains(s.View(80, 24), "Loading categories") {
		t.Error("expected loading state before the fetch returns")
	}
	run(t, s, s.Init())

	if len(s.categories) != 2 {
		t.Fatalf("got %d categories", len(s.categories))
	}
	view := s.View(80, 24)
	for _, want := range []string{"Basics", "2 lessons", "First words", "Travel"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestCategoriesErrorAndRetry(t *testing.T) {
	client := testClient()
	client.FetchErr = &api.Error{Err: errors.New("connection refused")}
	s := NewCategories(screentest.Deps(client))
	run(t, s, s.Init())

	if s.errMsg == "" {
		t.Fatal("expected an error message")
	}
	if !strings.Contains(s.View(80, 24), "Press R to retry") {
		t.Error("retry hint missing")
	}

	client.FetchErr = nil
	_, cmd := screentest.Press(s, "r")
	if s.errMsg != "" || s.loaded {
		t.Error("retry clears the error and shows loading")
	}
	run(t, s, cmd)
	if len(s.categories) != 2 {
		t.Errorf("retry should load categories, got %d", len(s.categories))
	}
}

func TestCategoriesEnterPushesLessons(t *testing.T) {
	s := NewCategories(screentest.Deps(testClient()))
	run(t, s, s.Init())

	screentest.Press(s, "down", "down")
	if s.selected != 1 {
		t.Errorf("selected = %d, want 1", s.selected)
	}
	screentest.Press(s, "up")
	_, cmd := screentest.Press(s, "enter")

	next, ok := pushed(t, cmd).(*LessonsScreen)
	if !ok {
		t.Fatal("expected a lessons screen")
	}
	if next.Title() != "Basics" {
		t.Errorf("Title = %q", next.Title())
	}
}

func TestLessonsLoad(t *testing.T) {
	s := NewLessons(screentest.Deps(testClient()), api.Category{Slug: "basics", Name: "Basics"})
	run(t, s, s.Init())

	if len(s.lessons) != 2 {
		t.Fatalf("got %d lessons", len(s.lessons))
	}
	if s.category.Description != "First words" {
		t.Error("category refresh should fill the description")
	}
	view := s.View(80, 24)
	for _, want := range []string{"Greetings", "A1", "50%", "Numbers"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestLessonsEmptyCategory(t *testing.T) {
	s := NewLessons(screentest.Deps(testClient()), api.Category{Slug: "travel", Name: "Travel"})
	run(t, s, s.Init())
	if !strings.Contains(s.View(80, 24), "No lessons") {
		t.Error("expected empty hint")
	}
	if _, cmd := screentest.Press(s, "enter"); cmd != nil {
		t.Error("enter on an empty list does nothing")
	}
}

func TestLessonsEnterAndCategoryQuiz(t *testing.T) {
	s := NewLessons(screentest.Deps(testClient()), api.Category{Slug: "basics", Name: "Basics"})
	run(t, s, s.Init())

	_, cmd := screentest.Press(s, "down", "enter")
	if _, ok := pushed(t, cmd).(*lessondetail.LessonDetailScreen); !ok {
		t.Error("enter opens the lesson")
	}

	_, cmd = screentest.Press(s, "q")
	p, ok := pushed(t, cmd).(*placeholder.PlaceholderScreen)
	if !ok {
		t.Fatal("q opens the category quiz placeholder")
	}
	if !strings.Contains(p.View(80, 24), "Basics") {
		t.Error("placeholder names the category")
	}
}

func TestPlural(t *testing.T) {
	if plural(1, "lesson") != "1 lesson" || plural(3, "lesson") != "3 lessons" {
		t.Error("plural")
	}
}

func TestLessonsForClosedCategoryAreDropped(t *testing.T) {
	deps := screentest.Deps(testClient())
	r := router.New(NewCategories(deps))

	pending := r.Push(NewLessons(deps, api.Category{Slug: "basics", Name: "Basics"}))
	r.Pop()
	current := r.Push(NewLessons(deps, api.Category{Slug: "travel", Name: "Travel"}))
	s := r.Active().(*LessonsScreen)

	run(t, s, pending)
	if s.loaded || len(s.lessons) != 0 || s.category.Description != "" {
		t.Fatalf("travel screen took basics results: lessons=%v category=%+v", s.lessons, s.category)
	}

	run(t, s, current)
	if !s.loaded || s.category.Name != "Travel" {
		t.Errorf("loaded=%v category=%+v", s.loaded, s.category)
	}
}
