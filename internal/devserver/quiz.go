package devserver

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/prava/internal/api"
)

const maxRandomSize = 50

// selected mirrors the four wire encodings of an answer.
type selected struct {
	Index  *int     `json:"index"`
	Value  *bool    `json:"value"`
	Text   *string  `json:"text"`
	Tokens []string `json:"tokens"`
}

// grade reports whether raw is the correct answer to q.
func grade(q api.QuizItem, key answerKey, raw json.RawMessage) bool {
	var sel selected
	if err := json.Unmarshal(raw, &sel); err != nil {
		return false
	}
	switch q.QType {
	case api.QTypeMCQ:
		return sel.Index != nil && *sel.Index == key.Index
	case api.QTypeTF:
		return sel.Value != nil && *sel.Value == key.Value
	case api.QTypeFill:
		return sel.Text != nil && strings.EqualFold(strings.TrimSpace(*sel.Text), key.Text)
	case api.QTypeBuild:
		return slices.Equal(sel.Tokens, key.Tokens)
	}
	return false
}

func (s *Server) handleLessonAttempt(w http.ResponseWriter, r *http.Request) {
	var sub api.LessonSubmission
	if !decodeBody(w, r, &sub) {
		return
	}
	rec, ok := s.catalog.lessons[sub.LessonID]
	if !ok {
		writeJSON(w, http.StatusBadRequest, fieldErrors{"lesson_id": {fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", sub.LessonID)}})
		return
	}

	byID := make(map[int]json.RawMessage, len(sub.Answers))
	for _, a := range sub.Answers {
		byID[a.QuestionID] = a.Selected
	}

	res := api.QuizResult{Total: len(rec.detail.Questions)}
	for _, q := range rec.detail.Questions {
		raw, answered := byID[q.ID]
		ok := answered && grade(q, rec.keys[q.ID], raw)
		if ok {
			res.Correct++
		}
		res.Details = append(res.Details, api.AnswerResult{
			QuestionID: strconv.Itoa(q.ID),
			Correct:    ok,
			Expected:   expected(q, rec.keys[q.ID]),
		})
	}

	s.finishAttempt(w, r, &res, rec.detail.ID, rec.detail.Title)
}

func (s *Server) handleRandomQuiz(w http.ResponseWriter, r *http.Request) {
	size := 10
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, fieldErrors{"size": {"A valid integer is required."}})
			return
		}
		size = min(n, maxRandomSize)
	}

	pool := s.pool()
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > size {
		pool = pool[:size]
	}

	s.mu.Lock()
	if acct := s.currentAccount(r); acct != nil {
		acct.served = len(pool)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, pool)
}

// pool lists every question of every lesson as a randomized-quiz item.
func (s *Server) pool() []api.QuizItem {
	ids := make([]int, 0, len(s.catalog.lessons))
	for id := range s.catalog.lessons {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var out []api.QuizItem
	for _, id := range ids {
		for i, q := range s.catalog.lessons[id].detail.Questions {
			lessonID, idx := id, i
			item := q
			item.ID = 0
			item.QID = poolQID(id, i)
			item.LessonID = &lessonID
			item.ItemIndex = &idx
			out = append(out, item)
		}
	}
	return out
}

func poolQID(lessonID, itemIndex int) string {
	return fmt.Sprintf("l%d-q%d", lessonID, itemIndex)
}

func (s *Server) handleRandomAttempt(w http.ResponseWriter, r *http.Request) {
	var sub api.RandomSubmission
	if !decodeBody(w, r, &sub) {
		return
	}

	// Unanswered items count against the score, so the total is what was
	// served rather than what came back.
	s.mu.Lock()
	total := len(sub.Answers)
	if acct := s.currentAccount(r); acct != nil {
		total = max(total, acct.served)
		acct.served = 0
	}
	s.mu.Unlock()

	res := api.QuizResult{Total: total}
	for _, a := range sub.Answers {
		ok := false
		exp := ""
		if rec, found := s.catalog.lessons[a.LessonID]; found && a.ItemIndex >= 0 && a.ItemIndex < len(rec.detail.Questions) {
			q := rec.detail.Questions[a.ItemIndex]
			ok = grade(q, rec.keys[q.ID], a.Selected)
			exp = expected(q, rec.keys[q.ID])
		}
		if ok {
			res.Correct++
		}
		res.Details = append(res.Details, api.AnswerResult{QuestionID: a.QID, Correct: ok, Expected: exp})
	}

	s.finishAttempt(w, r, &res, 0, "Random quiz")
}

// finishAttempt scores, awards XP, updates the streak and writes res.
func (s *Server) finishAttempt(w http.ResponseWriter, r *http.Request, res *api.QuizResult, lessonID int, title string) {
	if res.Total > 0 {
		res.Score = math.Round(1000*float64(res.Correct)/float64(res.Total)) / 10
	}
	res.XPEarned = res.Correct * 10

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.currentAccount(r)
	now := s.now()

	s.attempts++
	res.ID = s.attempts
	acct.XP += res.XPEarned
	acct.Level = 1 + acct.XP/100
	acct.Streak = nextStreak(acct, now)
	acct.attempts = append(acct.attempts, attempt{lessonID: lessonID, title: title, score: res.Score, at: now})

	writeJSON(w, http.StatusCreated, res)
}

func nextStreak(acct *account, now time.Time) int {
	if len(acct.attempts) == 0 {
		return 1
	}
	last := acct.attempts[len(acct.attempts)-1].at
	y1, m1, d1 := last.Date()
	y2, m2, d2 := now.Date()
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, now.Location())
	lastDay := time.Date(y1, m1, d1, 0, 0, 0, 0, now.Location())
	switch today.Sub(lastDay) {
	case 0:
		return max(acct.Streak, 1)
	case 24 * time.Hour:
		return acct.Streak + 1
	default:
		return 1
	}
}

func expected(q api.QuizItem, key answerKey) string {
	switch q.QType {
	case api.QTypeMCQ:
		if key.Index >= 0 && key.Index < len(q.Options) {
			return q.Options[key.Index]
		}
	case api.QTypeTF:
		return strconv.FormatBool(key.Value)
	case api.QTypeFill:
		return key.Text
	case api.QTypeBuild:
		return strings.Join(key.Tokens, " ")
	}
	return ""
}
