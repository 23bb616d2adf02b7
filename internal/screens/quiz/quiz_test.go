package quiz

import (
	"strings"
	"testing"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/router"
	"github.com/abhisek/prava/internal/screens/result"
	"github.com/abhisek/prava/internal/screens/screentest"
)

func lessonDetail() *api.LessonDetail {
	return &api.LessonDetail{
		ID:    3,
		Title: "Greetings",
		Questions: []api.QuizItem{
			{ID: 31, QType: api.QTypeMCQ, Prompt: "How do you greet in the morning?", Options: []string{"Good night", "Good morning", "Goodbye"}},
			{ID: 32, QType: api.QTypeTF, Prompt: "'Hello' is a greeting."},
			{ID: 33, QType: api.QTypeBuild, Prompt: "Build: Bună dimineața", Tokens: []string{"morning", "Good"}},
			{ID: 34, QType: api.QTypeFill, Prompt: "___, my name is Ana."},
		},
	}
}

func newLessonQuiz(client *api.MockClient) *QuizScreen {
	s := NewLesson(screentest.Deps(client), lessonDetail())
	s.Init()
	return s
}

func selected(t *testing.T, sub api.LessonSubmission) map[int]string {
	t.Helper()
	out := make(map[int]string, len(sub.Answers))
	for _, a := range sub.Answers {
		out[a.QuestionID] = string(a.Selected)
	}
	return out
}

func TestLessonQuizSubmit(t *testing.T) {
	client := &api.MockClient{}
	s := newLessonQuiz(client)

	screentest.Press(s, "2", "tab", "t", "tab", "2", "1", "tab")
	screentest.Type(s, "Hello")
	_, cmd := screentest.Press(s, "enter")
	if !s.submitting {
		t.Fatal("enter on the last question submits")
	}

	done := screentest.Exec(t, cmd)
	if len(client.LessonSubmissions) != 1 {
		t.Fatalf("got %d submissions", len(client.LessonSubmissions))
	}
	sub := client.LessonSubmissions[0]
	if sub.LessonID != 3 {
		t.Errorf("lesson id = %d", sub.LessonID)
	}
	got := selected(t, sub)
	want := map[int]string{
		31: `{"index":1}`,
		32: `{"value":true}`,
		33: `{"tokens":["Good","morning"]}`,
		34: `{"text":"Hello"}`,
	}
	for id, w := range want {
		if got[id] != w {
			t.Errorf("question %d selected %s, want %s", id, got[id], w)
		}
	}

	_, cmd = s.Update(done)
	msg, ok := screentest.Exec(t, cmd).(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected the result screen to replace the quiz")
	}
	if _, ok := msg.Screen.(*result.ResultScreen); !ok {
		t.Errorf("replacement is %T", msg.Screen)
	}
}

func TestEnterOnChoiceAdvances(t *testing.T) {
	s := newLessonQuiz(&api.MockClient{})
	screentest.Press(s, "down", "enter")
	if s.idx != 1 {
		t.Fatalf("idx = %d, want 1", s.idx)
	}
	if got := s.answers.Get(s.items[0]); got == nil {
		t.Error("enter records the highlighted option")
	}
}

func TestFalseKey(t *testing.T) {
	client := &api.MockClient{}
	s := newLessonQuiz(client)
	_, cmd := screentest.Press(s, "tab", "f", "ctrl+s", "ctrl+s")
	screentest.Exec(t, cmd)

	got := selected(t, client.LessonSubmissions[0])
	if got[32] != `{"value":false}` {
		t.Errorf("tf selected %s", got[32])
	}
}

func TestBackKeepsAnswer(t *testing.T) {
	s := newLessonQuiz(&api.MockClient{})
	screentest.Press(s, "3", "tab", "shift+tab")
	if s.choice.Chosen != 2 {
		t.Errorf("chosen = %d, want 2", s.choice.Chosen)
	}
}

func TestBuildUndoClearsAnswer(t *testing.T) {
	s := newLessonQuiz(&api.MockClient{})
	screentest.Press(s, "tab", "tab", "1", "backspace")
	if s.answers.Get(s.items[2]) != nil {
		t.Error("an empty token list is no answer")
	}
}

func TestSubmitNothingAnswered(t *testing.T) {
	client := &api.MockClient{}
	s := newLessonQuiz(client)
	_, cmd := screentest.Press(s, "ctrl+s")
	if cmd != nil {
		t.Fatal("nothing to submit")
	}
	if !strings.Contains(s.status, "at least one") {
		t.Errorf("status = %q", s.status)
	}
}

func TestSubmitConfirmsUnanswered(t *testing.T) {
	client := &api.MockClient{}
	s := newLessonQuiz(client)

	_, cmd := screentest.Press(s, "1", "ctrl+s")
	if cmd != nil {
		t.Fatal("first submit with gaps only asks to confirm")
	}
	if !strings.Contains(s.View(80, 30), "3 unanswered") {
		t.Errorf("status = %q", s.status)
	}

	_, cmd = screentest.Press(s, "ctrl+s")
	screentest.Exec(t, cmd)
	if n := len(client.LessonSubmissions[0].Answers); n != 1 {
		t.Errorf("submitted %d answers, want only the answered one", n)
	}
}

func TestSubmitError(t *testing.T) {
	client := &api.MockClient{SubmitErr: &api.Error{Status: 500, Message: "Server error."}}
	s := newLessonQuiz(client)

	_, cmd := screentest.Press(s, "1", "ctrl+s", "ctrl+s")
	_, next := s.Update(screentest.Exec(t, cmd))
	if next != nil {
		t.Error("no navigation on failure")
	}
	if s.submitting || s.errMsg != "Server error." {
		t.Errorf("submitting=%v errMsg=%q", s.submitting, s.errMsg)
	}
}

func TestEmptyLessonQuiz(t *testing.T) {
	s := NewLesson(screentest.Deps(&api.MockClient{}), &api.LessonDetail{ID: 1, Title: "Empty"})
	if cmd := s.Init(); cmd != nil {
		t.Error("nothing to focus")
	}
	if !strings.Contains(s.View(80, 24), "no questions") {
		t.Error("expected empty message")
	}
	if _, cmd := screentest.Press(s, "ctrl+s"); cmd != nil {
		t.Error("keys are ignored without questions")
	}
}

func intPtr(n int) *int { return &n }

func TestRandomQuiz(t *testing.T) {
	client := &api.MockClient{Random: []api.QuizItem{
		{QID: "l2-0", LessonID: intPtr(2), ItemIndex: intPtr(0), QType: api.QTypeTF, Prompt: "Cats are animals."},
		{QID: "l5-1", QType: api.QTypeMCQ, Prompt: "Broken", Options: []string{"only one"}},
		{QID: "l5-2", QType: api.QTypeMCQ, Prompt: "Pick 'red'", Options: []string{"roșu", "verde"}},
	}}
	s := NewRandom(screentest.Deps(client))

	s.Update(screentest.Exec(t, s.Init()))
	if len(client.RandomSizes) != 1 || client.RandomSizes[0] != 5 {
		t.Errorf("requested sizes %v", client.RandomSizes)
	}
	if len(s.items) != 2 || s.rejected != 1 {
		t.Fatalf("items=%d rejected=%d", len(s.items), s.rejected)
	}

	_, cmd := screentest.Press(s, "t", "tab", "1", "enter")
	screentest.Exec(t, cmd)

	sub := client.RandomSubmissions[0]
	if len(sub.Answers) != 2 {
		t.Fatalf("got %d answers", len(sub.Answers))
	}
	first, second := sub.Answers[0], sub.Answers[1]
	if first.QID != "l2-0" || first.LessonID != 2 || first.ItemIndex != 0 {
		t.Errorf("first = %+v", first)
	}
	if second.QID != "l5-2" || second.LessonID != 2 || second.ItemIndex != 0 {
		t.Errorf("missing lesson_id falls back to the position, got %+v", second)
	}
}

func TestRandomQuizFetchErrorRetry(t *testing.T) {
	client := &api.MockClient{FetchErr: &api.Error{Status: 503, Message: "Service unavailable."}}
	s := NewRandom(screentest.Deps(client))
	s.Update(screentest.Exec(t, s.Init()))

	if !strings.Contains(s.View(80, 24), "Service unavailable.") {
		t.Error("expected error view")
	}

	client.FetchErr = nil
	client.Random = []api.QuizItem{{QID: "q1", QType: api.QTypeTF, Prompt: "Yes?"}}
	_, cmd := screentest.Press(s, "r")
	if !s.loading {
		t.Fatal("r retries the fetch")
	}
	s.Update(screentest.Exec(t, cmd))
	if len(s.items) != 1 || s.errMsg != "" {
		t.Errorf("items=%d errMsg=%q", len(s.items), s.errMsg)
	}
}

func TestResultsFromClosedQuizAreDropped(t *testing.T) {
	client := &api.MockClient{Random: []api.QuizItem{{QID: "q1", QType: api.QTypeTF, Prompt: "Yes?"}}}
	deps := screentest.Deps(client)

	closed := NewRandom(deps)
	pending := closed.Init()
	current := NewRandom(deps)
	current.Init()

	current.Update(screentest.Exec(t, pending))
	if !current.loading || len(current.items) != 0 {
		t.Fatal("a new quiz must not take items fetched for a closed one")
	}

	old := newLessonQuiz(client)
	_, submit := screentest.Press(old, "1", "ctrl+s", "ctrl+s")
	fresh := newLessonQuiz(client)
	if _, cmd := fresh.Update(screentest.Exec(t, submit)); cmd != nil {
		t.Error("a submission for a closed quiz must not open a result screen")
	}
}
