// Package quiz is the quiz-taking screen for lesson quizzes and randomized
// quizzes.
package quiz

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prava/internal/api"
	qz "github.com/abhisek/prava/internal/quiz"
	"github.com/abhisek/prava/internal/router"
	"github.com/abhisek/prava/internal/screen"
	"github.com/abhisek/prava/internal/screens/result"
	"github.com/abhisek/prava/internal/ui/components"
	"github.com/abhisek/prava/internal/ui/layout"
	"github.com/abhisek/prava/internal/ui/theme"
)

// Results carry the screen that started the request. A quiz opened later
// ignores them.
type itemsMsg struct {
	from  *QuizScreen
	Items []api.QuizItem
	Err   error
}

type submitDoneMsg struct {
	from   *QuizScreen
	Result *api.QuizResult
	Err    error
}

var tfOptions = []string{"True", "False"}

// QuizScreen asks the questions of one quiz run and submits the answers.
type QuizScreen struct {
	deps     screen.Deps
	mode     string
	lessonID int
	title    string

	items    []api.QuizItem
	answers  qz.Answers
	idx      int
	rejected int

	choice components.Choice
	input  components.TextInput
	picker components.TokenPicker

	loading     bool
	submitting  bool
	confirmSkip bool
	status      string
	errMsg      string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// NewLesson creates a quiz over the questions of lesson d.
func NewLesson(deps screen.Deps, d *api.LessonDetail) *QuizScreen {
	s := &QuizScreen{
		deps:     deps,
		mode:     result.ModeLesson,
		lessonID: d.ID,
		title:    d.Title,
		answers:  qz.Answers{},
	}
	s.setItems(d.Questions)
	return s
}

// NewRandom creates a quiz that draws its questions from every lesson.
func NewRandom(deps screen.Deps) *QuizScreen {
	return &QuizScreen{
		deps:    deps,
		mode:    result.ModeRandom,
		title:   "Random quiz",
		answers: qz.Answers{},
		loading: true,
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	if s.mode == result.ModeRandom && s.loading {
		return s.fetch()
	}
	return s.syncWidget()
}

func (s *QuizScreen) fetch() tea.Cmd {
	client, size := s.deps.Client, s.deps.RandomQuizSize
	return func() tea.Msg {
		items, err := client.RandomQuiz(context.Background(), size)
		return itemsMsg{from: s, Items: items, Err: err}
	}
}

// setItems keeps the questions an input widget can answer and logs the
// rest.
func (s *QuizScreen) setItems(items []api.QuizItem) {
	ok, rejected := qz.Prepare(items)
	for _, verr := range rejected {
		s.deps.Logger().Warn("skipping quiz item", "mode", s.mode, "item", verr.Item, "reason", verr.Message)
	}
	s.items = ok
	s.rejected = len(rejected)
	s.idx = 0
}

func (s *QuizScreen) Title() string {
	return s.title
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if len(s.items) == 0 {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	hints := []layout.KeyHint{}
	switch s.current().QType {
	case api.QTypeMCQ:
		hints = append(hints, layout.KeyHint{Key: "1-9", Description: "Choose"})
	case api.QTypeTF:
		hints = append(hints, layout.KeyHint{Key: "T/F", Description: "Choose"})
	case api.QTypeBuild:
		hints = append(hints, layout.KeyHint{Key: "1-9", Description: "Pick word"}, layout.KeyHint{Key: "Bksp", Description: "Undo"})
	}
	return append(hints,
		layout.KeyHint{Key: "Tab", Description: "Next"},
		layout.KeyHint{Key: "Shift+Tab", Description: "Back"},
		layout.KeyHint{Key: "Ctrl+S", Description: "Submit"},
	)
}

func (s *QuizScreen) current() api.QuizItem {
	if len(s.items) == 0 {
		return api.QuizItem{}
	}
	return s.items[s.idx]
}

// syncWidget rebuilds the input for the current question from its stored
// answer.
func (s *QuizScreen) syncWidget() tea.Cmd {
	if len(s.items) == 0 {
		return nil
	}
	q := s.current()
	sel := s.answers.Get(s.idx)
	switch q.QType {
	case api.QTypeMCQ:
		chosen := -1
		if v, ok := sel.(qz.Index); ok {
			chosen = int(v)
		}
		s.choice = components.NewChoice(q.Options, chosen)
	case api.QTypeTF:
		chosen := -1
		if v, ok := sel.(qz.Bool); ok {
			chosen = 1
			if v {
				chosen = 0
			}
		}
		s.choice = components.NewChoice(tfOptions, chosen)
	case api.QTypeFill:
		s.input = components.NewTextInput("", "Type your answer...", 200)
		if v, ok := sel.(qz.Text); ok {
			s.input.SetValue(string(v))
		}
		return s.input.Focus()
	case api.QTypeBuild:
		var answer []string
		if v, ok := sel.(qz.Tokens); ok {
			answer = v
		}
		s.picker = components.NewTokenPicker(q.Tokens, answer)
	}
	return nil
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case itemsMsg:
		if msg.from != s {
			return s, nil
		}
		s.loading = false
		if msg.Err != nil {
			s.deps.Logger().Warn("load random quiz failed", "error", msg.Err)
			s.errMsg = api.UserMessage(msg.Err)
			return s, nil
		}
		s.errMsg = ""
		s.setItems(msg.Items)
		return s, s.syncWidget()

	case submitDoneMsg:
		if msg.from != s {
			return s, nil
		}
		s.submitting = false
		if msg.Err != nil {
			s.deps.Logger().Warn("submit quiz failed", "mode", s.mode, "error", msg.Err)
			s.errMsg = api.UserMessage(msg.Err)
			return s, nil
		}
		res := result.New(s.deps, result.Attempt{
			Mode:     s.mode,
			LessonID: s.lessonID,
			Title:    s.title,
			Items:    s.items,
			Answered: s.answers.Answered(s.items),
			Result:   msg.Result,
		})
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: res} }

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if len(s.items) > 0 && s.current().QType == api.QTypeFill {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.submitting {
		return s, nil
	}
	key := msg.String()

	if s.loading || len(s.items) == 0 {
		if key == "r" && s.mode == result.ModeRandom && s.errMsg != "" {
			s.loading = true
			s.errMsg = ""
			return s, s.fetch()
		}
		return s, nil
	}

	switch key {
	case "ctrl+s":
		return s, s.submit()
	case "tab":
		return s, s.move(1)
	case "shift+tab":
		return s, s.move(-1)
	}

	q := s.current()
	switch q.QType {
	case api.QTypeMCQ, api.QTypeTF:
		if q.QType == api.QTypeTF {
			switch key {
			case "t":
				key, msg = "1", tea.KeyPressMsg{Code: '1', Text: "1"}
			case "f":
				key, msg = "2", tea.KeyPressMsg{Code: '2', Text: "2"}
			}
		}
		var picked bool
		s.choice, picked = s.choice.Update(msg)
		if picked {
			s.record(q)
			if key == "enter" || key == "space" || key == " " {
				return s, s.advance()
			}
		}
		return s, nil

	case api.QTypeFill:
		if key == "enter" {
			return s, s.advance()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		s.record(q)
		return s, cmd

	case api.QTypeBuild:
		if key == "enter" {
			return s, s.advance()
		}
		var changed bool
		s.picker, changed = s.picker.Update(msg)
		if changed {
			s.record(q)
		}
	}
	return s, nil
}

// record stores the widget state as the selection for q. An empty widget
// clears the answer.
func (s *QuizScreen) record(q api.QuizItem) {
	var sel qz.Selection
	switch q.QType {
	case api.QTypeMCQ:
		if s.choice.Chosen >= 0 {
			sel = qz.Index(s.choice.Chosen)
		}
	case api.QTypeTF:
		if s.choice.Chosen >= 0 {
			sel = qz.Bool(s.choice.Chosen == 0)
		}
	case api.QTypeFill:
		if v := s.input.Value(); strings.TrimSpace(v) != "" {
			sel = qz.Text(v)
		}
	case api.QTypeBuild:
		if answer := s.picker.Answer(); len(answer) > 0 {
			sel = qz.Tokens(answer)
		}
	}
	s.answers.Set(s.idx, sel)
	s.status = ""
	s.confirmSkip = false
}

// advance goes to the next question, or submits from the last one.
func (s *QuizScreen) advance() tea.Cmd {
	if s.idx == len(s.items)-1 {
		return s.submit()
	}
	return s.move(1)
}

func (s *QuizScreen) move(delta int) tea.Cmd {
	next := s.idx + delta
	if next < 0 || next >= len(s.items) {
		return nil
	}
	s.idx = next
	s.status = ""
	return s.syncWidget()
}

// submit sends the answered questions. Unanswered ones are left out of
// the payload; with any missing, the first call only asks to confirm.
func (s *QuizScreen) submit() tea.Cmd {
	answered := s.answers.Answered(s.items)
	if answered == 0 {
		s.status = "Answer at least one question before submitting."
		return nil
	}
	if missing := len(s.items) - answered; missing > 0 && !s.confirmSkip {
		s.confirmSkip = true
		s.status = fmt.Sprintf("%d unanswered. Press Ctrl+S again to submit anyway.", missing)
		return nil
	}

	s.submitting = true
	s.status = ""
	s.errMsg = ""
	client, mode, lessonID := s.deps.Client, s.mode, s.lessonID
	items := append([]api.QuizItem(nil), s.items...)
	answers := make(qz.Answers, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}

	return func() tea.Msg {
		ctx := context.Background()
		if mode == result.ModeRandom {
			sub, err := qz.BuildRandomSubmission(items, answers)
			if err != nil {
				return submitDoneMsg{from: s, Err: err}
			}
			res, err := client.SubmitRandomQuiz(ctx, sub)
			return submitDoneMsg{from: s, Result: res, Err: err}
		}
		sub, err := qz.BuildLessonSubmission(lessonID, items, answers)
		if err != nil {
			return submitDoneMsg{from: s, Err: err}
		}
		res, err := client.SubmitLessonQuiz(ctx, sub)
		return submitDoneMsg{from: s, Result: res, Err: err}
	}
}

func (s *QuizScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)

	switch {
	case s.loading:
		return layout.RenderLoading(width, "Picking questions...")
	case len(s.items) == 0 && s.errMsg != "":
		return layout.RenderError(width, s.errMsg, "Press r to retry or Esc to go back.")
	case len(s.items) == 0:
		msg := "This quiz has no questions yet."
		if s.rejected > 0 {
			msg = "None of this quiz's questions can be shown here."
		}
		return layout.RenderError(width, msg, "Press Esc to go back.")
	}

	q := s.current()
	answered := s.answers.Answered(s.items)
	label := fmt.Sprintf("Question %d of %d  (%d answered)", s.idx+1, len(s.items), answered)
	pct := answered * 100 / len(s.items)
	bar := components.NewProgressBar(label, pct, false, cw)

	var sections []string
	sections = append(sections, bar.View())
	sections = append(sections, theme.Title.Render(q.Prompt))
	sections = append(sections, s.renderWidget(q))

	switch {
	case s.submitting:
		sections = append(sections, theme.Hint.Render("Submitting..."))
	case s.errMsg != "":
		sections = append(sections, theme.ErrorText.Render(s.errMsg))
	case s.status != "":
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Accent).Render(s.status))
	}

	content := lipgloss.NewStyle().Width(cw).Render(strings.Join(sections, "\n\n"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, "\n"+content)
}

func (s *QuizScreen) renderWidget(q api.QuizItem) string {
	switch q.QType {
	case api.QTypeMCQ, api.QTypeTF:
		return s.choice.View()
	case api.QTypeFill:
		out := s.input.View()
		if q.Blanks > 1 {
			out = theme.Hint.Render(fmt.Sprintf("%d blanks: separate answers with spaces.", q.Blanks)) + "\n" + out
		}
		return out
	case api.QTypeBuild:
		return s.picker.View()
	}
	return ""
}
