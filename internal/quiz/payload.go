package quiz

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/prava/internal/api"
)

// Answers maps a question's position in the quiz to its selection. Random
// quizzes can serve two items with the same id from different lessons, so
// the position is the only key that is unique within a run.
type Answers map[int]Selection

// Set records sel for the question at position i. A nil sel clears the
// answer.
func (a Answers) Set(i int, sel Selection) {
	if sel == nil {
		delete(a, i)
		return
	}
	a[i] = sel
}

// Get returns the selection recorded at position i, or nil.
func (a Answers) Get(i int) Selection {
	return a[i]
}

// Answered counts the items whose selection passes CanProceed.
func (a Answers) Answered(items []api.QuizItem) int {
	n := 0
	for i, q := range items {
		if CanProceed(q, a.Get(i)) {
			n++
		}
	}
	return n
}

// BuildLessonSubmission builds the POST /quiz-attempts/ body. Unanswered
// questions and selections that fail CanProceed are left out; scoring of
// the omitted questions is up to the server.
func BuildLessonSubmission(lessonID int, items []api.QuizItem, answers Answers) (api.LessonSubmission, error) {
	sub := api.LessonSubmission{LessonID: lessonID, Answers: []api.LessonAnswer{}}
	for i, q := range items {
		sel := answers.Get(i)
		if !CanProceed(q, sel) {
			continue
		}
		raw, err := json.Marshal(sel)
		if err != nil {
			return api.LessonSubmission{}, fmt.Errorf("encode answer to question %d: %w", q.ID, err)
		}
		sub.Answers = append(sub.Answers, api.LessonAnswer{QuestionID: q.ID, Selected: raw})
	}
	return sub, nil
}

// BuildRandomSubmission builds the POST /quiz/random/attempts/ body. Items
// missing item_index default to 0 and items missing lesson_id default to
// their 1-based position in the quiz.
func BuildRandomSubmission(items []api.QuizItem, answers Answers) (api.RandomSubmission, error) {
	sub := api.RandomSubmission{Answers: []api.RandomAnswer{}}
	for i, q := range items {
		sel := answers.Get(i)
		if !CanProceed(q, sel) {
			continue
		}
		raw, err := json.Marshal(sel)
		if err != nil {
			return api.RandomSubmission{}, fmt.Errorf("encode answer to %s: %w", q.Key(), err)
		}

		lessonID := i + 1
		if q.LessonID != nil {
			lessonID = *q.LessonID
		}
		itemIndex := 0
		if q.ItemIndex != nil {
			itemIndex = *q.ItemIndex
		}
		sub.Answers = append(sub.Answers, api.RandomAnswer{
			QID:       q.Key(),
			LessonID:  lessonID,
			ItemIndex: itemIndex,
			Selected:  raw,
		})
	}
	return sub, nil
}
