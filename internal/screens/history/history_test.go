package history

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/screens/screentest"
	"github.com/abhisek/prava/internal/store"
)

func newLoaded(t *testing.T, data ...store.AttemptEventData) *HistoryScreen {
	t.Helper()
	deps := screentest.Deps(&api.MockClient{})
	deps.Events = screentest.Events(t)
	for _, d := range data {
		if err := deps.Events.AppendAttemptEvent(context.Background(), d); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	s := New(deps)
	s.Update(screentest.Exec(t, s.Init()))
	return s
}

func TestEmptyHistory(t *testing.T) {
	s := newLoaded(t)
	if !strings.Contains(s.View(80, 24), "No quizzes yet") {
		t.Error("expected empty message")
	}
}

func TestListsNewestFirst(t *testing.T) {
	s := newLoaded(t,
		store.AttemptEventData{AttemptID: "a1", Mode: "lesson", LessonID: 3, Title: "Greetings", Total: 4, Answered: 4, Correct: 3, Score: 75},
		store.AttemptEventData{AttemptID: "a2", Mode: "random", Total: 5, Answered: 5, Correct: 5, Score: 100},
	)
	if len(s.attempts) != 2 {
		t.Fatalf("got %d attempts", len(s.attempts))
	}
	view := s.View(100, 24)
	random := strings.Index(view, "Random quiz")
	lesson := strings.Index(view, "Greetings")
	if random < 0 || lesson < 0 || random > lesson {
		t.Errorf("expected the newest attempt first:\n%s", view)
	}
}

func TestExpandDetails(t *testing.T) {
	s := newLoaded(t,
		store.AttemptEventData{AttemptID: "a1", Mode: "lesson", LessonID: 3, Title: "Greetings", Total: 4, Answered: 2, Correct: 1, Score: 25},
	)
	screentest.Press(s, "enter")
	if !strings.Contains(s.View(100, 24), "2 of 4 answered, lesson #3") {
		t.Error("expected expanded details")
	}
	screentest.Press(s, "enter")
	if strings.Contains(s.View(100, 24), "answered") {
		t.Error("second enter collapses")
	}
}

func TestNavigationBounds(t *testing.T) {
	s := newLoaded(t,
		store.AttemptEventData{AttemptID: "a1", Mode: "random"},
		store.AttemptEventData{AttemptID: "a2", Mode: "random"},
	)
	screentest.Press(s, "up")
	if s.selected != 0 {
		t.Errorf("selected = %d", s.selected)
	}
	screentest.Press(s, "down", "down", "down")
	if s.selected != 1 {
		t.Errorf("selected = %d", s.selected)
	}
}

func TestLoadError(t *testing.T) {
	s := New(screentest.Deps(&api.MockClient{}))
	s.Update(historyLoadedMsg{Err: errors.New("database is locked")})
	if !strings.Contains(s.View(80, 24), "database is locked") {
		t.Error("expected error")
	}
}

func TestTitleOfTruncates(t *testing.T) {
	a := store.AttemptEvent{AttemptEventData: store.AttemptEventData{Title: "A very long lesson title that keeps going"}}
	if got := titleOf(a); len([]rune(got)) != 24 {
		t.Errorf("titleOf = %q", got)
	}
}
