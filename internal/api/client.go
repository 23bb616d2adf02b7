package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Client is the set of Prava REST operations the front end consumes.
type Client interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	RefreshToken(ctx context.Context, refresh string) (*Tokens, error)

	Me(ctx context.Context) (*User, error)
	Summary(ctx context.Context) (*Summary, error)

	Categories(ctx context.Context) ([]Category, error)
	Category(ctx context.Context, slug string) (*Category, error)
	CategoryLessons(ctx context.Context, slug string) ([]LessonSummary, error)
	Lesson(ctx context.Context, id int) (*LessonDetail, error)

	UpdateProgress(ctx context.Context, p ProgressUpdate) error

	SubmitLessonQuiz(ctx context.Context, sub LessonSubmission) (*QuizResult, error)
	RandomQuiz(ctx context.Context, size int) ([]QuizItem, error)
	SubmitRandomQuiz(ctx context.Context, sub RandomSubmission) (*QuizResult, error)
}

// LessonSubmission is the body of POST /quiz-attempts/.
type LessonSubmission struct {
	LessonID int            `json:"lesson_id"`
	Answers  []LessonAnswer `json:"answers"`
}

// LessonAnswer is one answered question in a lesson submission.
type LessonAnswer struct {
	QuestionID int             `json:"question_id"`
	Selected   json.RawMessage `json:"selected"`
}

// RandomSubmission is the body of POST /quiz/random/attempts/.
type RandomSubmission struct {
	Answers []RandomAnswer `json:"answers"`
}

// RandomAnswer is one answered item in a randomized submission. Items may
// originate from different lessons, so each carries its source.
type RandomAnswer struct {
	QID       string          `json:"qid"`
	LessonID  int             `json:"lesson_id"`
	ItemIndex int             `json:"item_index"`
	Selected  json.RawMessage `json:"selected"`
}

// Endpoint paths, relative to the configured base URL.
const (
	PathLogin         = "/auth/login/"
	PathRegister      = "/auth/register/"
	PathTokenRefresh  = "/auth/token/refresh/"
	PathMe            = "/me/"
	PathMeSummary     = "/me/summary/"
	PathCategories    = "/categories/"
	PathProgress      = "/progress/"
	PathQuizAttempts  = "/quiz-attempts/"
	PathRandomQuiz    = "/quiz/random/"
	PathRandomAttempt = "/quiz/random/attempts/"
)

func categoryPath(slug string) string {
	return PathCategories + url.PathEscape(slug) + "/"
}

func categoryLessonsPath(slug string) string {
	return categoryPath(slug) + "lessons/"
}

func lessonPath(id int) string {
	return "/lessons/" + strconv.Itoa(id) + "/"
}

func randomQuizPath(size int) string {
	return fmt.Sprintf("%s?size=%d", PathRandomQuiz, size)
}

// decodeList accepts either a bare JSON array or a paginated
// {"results": [...]} envelope.
func decodeList[T any](raw []byte) ([]T, error) {
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var page struct {
		Results []T `json:"results"`
		Items   []T `json:"items"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if page.Results != nil {
		return page.Results, nil
	}
	return page.Items, nil
}
