package api

import (
	"context"
	"fmt"
	"sync"
)

// MockResponse is a canned response for the MockDoer.
type MockResponse struct {
	Status int
	Body   string
	Err    error
}

// MockDoer is a deterministic Doer for testing.
// It returns canned responses in FIFO order and records all requests.
type MockDoer struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockDoer creates a MockDoer with the given canned responses.
func NewMockDoer(responses ...MockResponse) *MockDoer {
	return &MockDoer{responses: responses}
}

// Do returns the next canned response, or a transport error if the queue
// is empty.
func (m *MockDoer) Do(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &Error{Err: fmt.Errorf("mock: no response queued for %s %s", req.Method, req.Path)}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}
	status := resp.Status
	if status == 0 {
		status = 200
	}
	return &Response{Status: status, Body: []byte(resp.Body), RequestID: "mock"}, nil
}

// CallCount returns the number of Do calls made.
func (m *MockDoer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockClient is an in-memory Client for screen and service tests. Zero
// values return empty results; the *Err fields force failures.
type MockClient struct {
	mu sync.Mutex

	LoginResp    *LoginResponse
	LoginErr     error
	RegisterErr  error
	RefreshResp  *Tokens
	RefreshErr   error
	User         *User
	MeErr        error
	SummaryResp  *Summary
	SummaryErr   error
	CategoryList []Category
	Lessons      map[string][]LessonSummary
	Details      map[int]*LessonDetail
	FetchErr     error
	ProgressErr  error
	Random       []QuizItem
	Result       *QuizResult
	SubmitErr    error

	Registered        []RegisterRequest
	ProgressUpdates   []ProgressUpdate
	LessonSubmissions []LessonSubmission
	RandomSubmissions []RandomSubmission
	RandomSizes       []int
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Login(_ context.Context, username, _ string) (*LoginResponse, error) {
	if m.LoginErr != nil {
		return nil, m.LoginErr
	}
	if m.LoginResp != nil {
		return m.LoginResp, nil
	}
	return &LoginResponse{Tokens: Tokens{Access: "access-" + username, Refresh: "refresh-" + username}}, nil
}

func (m *MockClient) Register(_ context.Context, req RegisterRequest) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RegisterErr != nil {
		return nil, m.RegisterErr
	}
	m.Registered = append(m.Registered, req)
	return &User{ID: len(m.Registered), Username: req.Username, Email: req.Email}, nil
}

func (m *MockClient) RefreshToken(_ context.Context, refresh string) (*Tokens, error) {
	if m.RefreshErr != nil {
		return nil, m.RefreshErr
	}
	if m.RefreshResp != nil {
		return m.RefreshResp, nil
	}
	return &Tokens{Access: "refreshed-" + refresh}, nil
}

func (m *MockClient) Me(context.Context) (*User, error) {
	if m.MeErr != nil {
		return nil, m.MeErr
	}
	if m.User == nil {
		return &User{}, nil
	}
	return m.User, nil
}

func (m *MockClient) Summary(context.Context) (*Summary, error) {
	if m.SummaryErr != nil {
		return nil, m.SummaryErr
	}
	if m.SummaryResp == nil {
		return &Summary{}, nil
	}
	return m.SummaryResp, nil
}

func (m *MockClient) Categories(context.Context) ([]Category, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.CategoryList, nil
}

func (m *MockClient) Category(_ context.Context, slug string) (*Category, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	for _, c := range m.CategoryList {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, &Error{Status: 404, Message: "Not found."}
}

func (m *MockClient) CategoryLessons(_ context.Context, slug string) ([]LessonSummary, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Lessons[slug], nil
}

func (m *MockClient) Lesson(_ context.Context, id int) (*LessonDetail, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if d, ok := m.Details[id]; ok {
		return d, nil
	}
	return nil, &Error{Status: 404, Message: "Not found."}
}

func (m *MockClient) UpdateProgress(_ context.Context, p ProgressUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProgressUpdates = append(m.ProgressUpdates, p)
	return m.ProgressErr
}

func (m *MockClient) SubmitLessonQuiz(_ context.Context, sub LessonSubmission) (*QuizResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LessonSubmissions = append(m.LessonSubmissions, sub)
	if m.SubmitErr != nil {
		return nil, m.SubmitErr
	}
	return m.result(len(sub.Answers)), nil
}

func (m *MockClient) RandomQuiz(_ context.Context, size int) ([]QuizItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RandomSizes = append(m.RandomSizes, size)
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Random, nil
}

func (m *MockClient) SubmitRandomQuiz(_ context.Context, sub RandomSubmission) (*QuizResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RandomSubmissions = append(m.RandomSubmissions, sub)
	if m.SubmitErr != nil {
		return nil, m.SubmitErr
	}
	return m.result(len(sub.Answers)), nil
}

func (m *MockClient) result(answered int) *QuizResult {
	if m.Result != nil {
		return m.Result
	}
	return &QuizResult{Total: answered, Correct: answered, Score: 100}
}
