package api

import (
	"encoding/json"
	"strconv"
)

// User is the authenticated learner profile returned by /me/.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	XP       int    `json:"xp"`
	Streak   int    `json:"streak"`
	Level    int    `json:"level,omitempty"`
}

// Tokens is the pair issued by /auth/login/ and /auth/token/refresh/.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// LoginResponse is the body of a successful login. Some deployments
// embed the user profile; others only return tokens.
type LoginResponse struct {
	Tokens
	User *User `json:"user,omitempty"`
}

// RegisterRequest is the body sent to /auth/register/.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Summary is the dashboard roll-up from /me/summary/.
type Summary struct {
	XP                int             `json:"xp"`
	Streak            int             `json:"streak"`
	LessonsCompleted  int             `json:"lessons_completed"`
	LessonsInProgress int             `json:"lessons_in_progress"`
	QuizAttempts      int             `json:"quiz_attempts"`
	AverageScore      float64         `json:"avg_score"`
	Recent            []RecentAttempt `json:"recent,omitempty"`
}

// RecentAttempt is one entry of the summary's recent activity list.
type RecentAttempt struct {
	LessonID    int     `json:"lesson_id"`
	LessonTitle string  `json:"lesson_title"`
	Score       float64 `json:"score"`
	CreatedAt   string  `json:"created_at"`
}

// Category groups lessons by theme.
type Category struct {
	ID          int    `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LessonCount int    `json:"lesson_count,omitempty"`
}

// LessonSummary is a lesson as listed under a category.
type LessonSummary struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Difficulty string  `json:"difficulty,omitempty"`
	Order      int     `json:"order,omitempty"`
	Progress   float64 `json:"progress,omitempty"`
}

// LessonDetail is the immutable snapshot fetched for one lesson view.
type LessonDetail struct {
	ID         int             `json:"id"`
	Title      string          `json:"title"`
	Difficulty string          `json:"difficulty,omitempty"`
	BodyMD     string          `json:"body_md,omitempty"`
	Content    json.RawMessage `json:"content,omitempty"`
	Flashcards []Flashcard     `json:"flashcards"`
	Questions  []QuizItem      `json:"questions"`
}

// Flashcard is a front/back text pair with optional audio.
type Flashcard struct {
	ID       int    `json:"id,omitempty"`
	Front    string `json:"front"`
	Back     string `json:"back"`
	AudioURL string `json:"audio_url,omitempty"`
}

// QType is the quiz question kind.
type QType string

const (
	QTypeMCQ   QType = "mcq"
	QTypeTF    QType = "tf"
	QTypeFill  QType = "fill"
	QTypeBuild QType = "build"
)

// Valid reports whether q is one of the known question kinds.
func (q QType) Valid() bool {
	switch q {
	case QTypeMCQ, QTypeTF, QTypeFill, QTypeBuild:
		return true
	}
	return false
}

// QuizItem is a single quiz question. Lesson quizzes carry ID; randomized
// pool items carry QID plus the source LessonID and ItemIndex, either of
// which may be missing.
type QuizItem struct {
	ID        int      `json:"id,omitempty"`
	QID       string   `json:"qid,omitempty"`
	LessonID  *int     `json:"lesson_id,omitempty"`
	ItemIndex *int     `json:"item_index,omitempty"`
	QType     QType    `json:"qtype"`
	Prompt    string   `json:"prompt"`
	Options   []string `json:"options,omitempty"`
	Blanks    int      `json:"blanks,omitempty"`
	Tokens    []string `json:"tokens,omitempty"`
}

// Key returns the identifier used to key answer selections.
func (q QuizItem) Key() string {
	if q.QID != "" {
		return q.QID
	}
	return strconv.Itoa(q.ID)
}

// ProgressUpdate is the body of POST /progress/.
type ProgressUpdate struct {
	LessonID int `json:"lesson_id"`
	Percent  int `json:"percent"`
}

// QuizResult is the scoring response for either submission endpoint.
type QuizResult struct {
	ID       int            `json:"id,omitempty"`
	Score    float64        `json:"score"`
	Correct  int            `json:"correct"`
	Total    int            `json:"total"`
	XPEarned int            `json:"xp_earned,omitempty"`
	Details  []AnswerResult `json:"details,omitempty"`
}

// AnswerResult is per-question feedback included in a QuizResult.
type AnswerResult struct {
	QuestionID string `json:"question_id"`
	Correct    bool   `json:"correct"`
	Expected   string `json:"expected,omitempty"`
}

// UnmarshalJSON accepts both numeric and string question ids.
func (a *AnswerResult) UnmarshalJSON(b []byte) error {
	var raw struct {
		QuestionID json.RawMessage `json:"question_id"`
		QID        string          `json:"qid"`
		Correct    bool            `json:"correct"`
		Expected   string          `json:"expected"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	a.Correct = raw.Correct
	a.Expected = raw.Expected
	a.QuestionID = raw.QID
	if len(raw.QuestionID) > 0 {
		var s string
		if err := json.Unmarshal(raw.QuestionID, &s); err == nil {
			a.QuestionID = s
		} else {
			var n int
			if err := json.Unmarshal(raw.QuestionID, &n); err == nil {
				a.QuestionID = strconv.Itoa(n)
			}
		}
	}
	return nil
}
