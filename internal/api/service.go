package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Service implements Client on top of a Doer.
type Service struct {
	doer Doer
}

var _ Client = (*Service)(nil)

// NewService creates a Service that sends every call through doer.
func NewService(doer Doer) *Service {
	return &Service{doer: doer}
}

func (s *Service) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := s.call(WithPurpose(ctx, "login"), Request{
		Method: http.MethodPost,
		Path:   PathLogin,
		Body:   map[string]string{"username": username, "password": password},
		NoAuth: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var out User
	err := s.call(WithPurpose(ctx, "register"), Request{
		Method: http.MethodPost,
		Path:   PathRegister,
		Body:   req,
		NoAuth: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) RefreshToken(ctx context.Context, refresh string) (*Tokens, error) {
	var out Tokens
	err := s.call(WithPurpose(ctx, "refresh"), Request{
		Method: http.MethodPost,
		Path:   PathTokenRefresh,
		Body:   map[string]string{"refresh": refresh},
		NoAuth: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Me(ctx context.Context) (*User, error) {
	var out User
	if err := s.call(ctx, Request{Method: http.MethodGet, Path: PathMe}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	if err := s.call(ctx, Request{Method: http.MethodGet, Path: PathMeSummary}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	raw, err := s.raw(ctx, Request{Method: http.MethodGet, Path: PathCategories})
	if err != nil {
		return nil, err
	}
	return decodeList[Category](raw)
}

func (s *Service) Category(ctx context.Context, slug string) (*Category, error) {
	var out Category
	if err := s.call(ctx, Request{Method: http.MethodGet, Path: categoryPath(slug)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) CategoryLessons(ctx context.Context, slug string) ([]LessonSummary, error) {
	raw, err := s.raw(ctx, Request{Method: http.MethodGet, Path: categoryLessonsPath(slug)})
	if err != nil {
		return nil, err
	}
	return decodeList[LessonSummary](raw)
}

func (s *Service) Lesson(ctx context.Context, id int) (*LessonDetail, error) {
	var out LessonDetail
	if err := s.call(ctx, Request{Method: http.MethodGet, Path: lessonPath(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) UpdateProgress(ctx context.Context, p ProgressUpdate) error {
	_, err := s.raw(WithPurpose(ctx, "progress"), Request{
		Method: http.MethodPost,
		Path:   PathProgress,
		Body:   p,
	})
	return err
}

func (s *Service) SubmitLessonQuiz(ctx context.Context, sub LessonSubmission) (*QuizResult, error) {
	if sub.Answers == nil {
		sub.Answers = []LessonAnswer{}
	}
	var out QuizResult
	err := s.call(WithPurpose(ctx, "quiz_attempt"), Request{
		Method: http.MethodPost,
		Path:   PathQuizAttempts,
		Body:   sub,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) RandomQuiz(ctx context.Context, size int) ([]QuizItem, error) {
	raw, err := s.raw(ctx, Request{Method: http.MethodGet, Path: randomQuizPath(size)})
	if err != nil {
		return nil, err
	}
	return decodeList[QuizItem](raw)
}

func (s *Service) SubmitRandomQuiz(ctx context.Context, sub RandomSubmission) (*QuizResult, error) {
	if sub.Answers == nil {
		sub.Answers = []RandomAnswer{}
	}
	var out QuizResult
	err := s.call(WithPurpose(ctx, "random_quiz_attempt"), Request{
		Method: http.MethodPost,
		Path:   PathRandomAttempt,
		Body:   sub,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// raw executes req and returns the response body.
func (s *Service) raw(ctx context.Context, req Request) ([]byte, error) {
	resp, err := s.doer.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	return resp.Body, nil
}

// call executes req and decodes the JSON response into out.
func (s *Service) call(ctx context.Context, req Request, out any) error {
	raw, err := s.raw(ctx, req)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.Path, err)
	}
	return nil
}
