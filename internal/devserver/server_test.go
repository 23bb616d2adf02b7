package devserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/auth"
	"github.com/abhisek/prava/internal/lesson"
	"github.com/abhisek/prava/internal/quiz"
)

type harness struct {
	srv     *Server
	client  *api.Service
	session *auth.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	opts := DefaultOptions()
	opts.BcryptCost = bcrypt.MinCost
	srv, err := New(opts)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	session := auth.NewStore(nil, nil)
	cfg := api.DefaultConfig()
	cfg.BaseURL = ts.URL + "/api"
	cfg.Retry.MaxAttempts = 1
	client := api.New(cfg, session, nil, nil)
	return &harness{srv: srv, client: client, session: session}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := auth.Login(context.Background(), h.client, h.session, "demo", "demo1234")
	require.NoError(t, err)
}

func TestLogin_DemoAccount(t *testing.T) {
	h := newHarness(t)
	sess, err := auth.Login(context.Background(), h.client, h.session, "demo", "demo1234")
	require.NoError(t, err)

	assert.True(t, sess.IsAuthenticated)
	assert.NotEmpty(t, sess.RefreshToken)
	require.NotNil(t, sess.User)
	assert.Equal(t, "demo", sess.User.Username)
}

func TestLogin_BadCredentials(t *testing.T) {
	h := newHarness(t)
	_, err := auth.Login(context.Background(), h.client, h.session, "demo", "nope")
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "Unable to log in with provided credentials.", apiErr.Message)
}

func TestRegister_FieldErrors(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.Register(context.Background(), api.RegisterRequest{Username: "demo", Email: "bad", Password: "short"})
	require.Error(t, err)
	require.True(t, api.IsValidation(err))

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	fields := apiErr.FieldErrors()
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestRegister_ThenLogin(t *testing.T) {
	h := newHarness(t)
	sess, err := auth.Register(context.Background(), h.client, h.session, api.RegisterRequest{
		Username: "mara", Email: "mara@example.com", Password: "parola-lunga",
	})
	require.NoError(t, err)
	assert.Equal(t, "mara", sess.User.Username)

	_, err = h.client.Register(context.Background(), api.RegisterRequest{
		Username: "mara", Email: "mara@example.com", Password: "parola-lunga",
	})
	require.True(t, api.IsValidation(err))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.Categories(context.Background())
	assert.True(t, api.IsUnauthorized(err))
}

func TestExpiredAccessTokenRejectedThenRefreshed(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.srv.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err := h.client.Me(context.Background())
	require.True(t, api.IsUnauthorized(err))

	old := h.session.Session().RefreshToken
	require.NoError(t, h.session.Refresh(context.Background(), h.client))
	assert.NotEqual(t, old, h.session.Session().RefreshToken, "refresh token rotates")

	u, err := h.client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "demo", u.Username)

	// The rotated-out refresh token is single-use.
	_, err = h.client.RefreshToken(context.Background(), old)
	assert.True(t, api.IsUnauthorized(err))
}

func TestBrowseCatalog(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	cats, err := h.client.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, 2, cats[0].LessonCount)

	cat, err := h.client.Category(ctx, "food")
	require.NoError(t, err)
	assert.Equal(t, "Food & drink", cat.Name)

	_, err = h.client.Category(ctx, "nope")
	assert.Equal(t, 404, api.StatusOf(err))

	lessons, err := h.client.CategoryLessons(ctx, "greetings")
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "Hello and goodbye", lessons[0].Title)

	d, err := h.client.Lesson(ctx, 1)
	require.NoError(t, err)
	c, err := lesson.ParseContent(d.Content)
	require.NoError(t, err, "seed content must satisfy the content schema")
	pages := lesson.Flatten(d, c)
	assert.Equal(t, lesson.PageOverview, pages[0].Kind)
	assert.Equal(t, lesson.PageReview, pages[len(pages)-1].Kind)

	for _, id := range []int{2, 3} {
		d, err := h.client.Lesson(ctx, id)
		require.NoError(t, err)
		_, err = lesson.ParseContent(d.Content)
		require.NoError(t, err)
	}
}

func TestProgressKeepsHighWater(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	require.NoError(t, h.client.UpdateProgress(ctx, api.ProgressUpdate{LessonID: 1, Percent: 60}))
	require.NoError(t, h.client.UpdateProgress(ctx, api.ProgressUpdate{LessonID: 1, Percent: 20}))

	lessons, err := h.client.CategoryLessons(ctx, "greetings")
	require.NoError(t, err)
	assert.Equal(t, 60.0, lessons[0].Progress)

	err = h.client.UpdateProgress(ctx, api.ProgressUpdate{LessonID: 99, Percent: 10})
	assert.True(t, api.IsValidation(err))
}

func TestLessonQuizScoring(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	d, err := h.client.Lesson(ctx, 1)
	require.NoError(t, err)

	answers := quiz.Answers{}
	// Two right, one wrong, one left blank.
	answers.Set(0, quiz.Index(1))
	answers.Set(1, quiz.Bool(false))
	answers.Set(3, quiz.Tokens{"Nice", "to", "meet", "you"})
	sub, err := quiz.BuildLessonSubmission(d.ID, d.Questions, answers)
	require.NoError(t, err)

	res, err := h.client.SubmitLessonQuiz(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, 50.0, res.Score)
	assert.Equal(t, 20, res.XPEarned)
	require.Len(t, res.Details, 4)
	assert.Equal(t, "morning", res.Details[2].Expected)

	sum, err := h.client.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, sum.XP)
	assert.Equal(t, 1, sum.Streak)
	assert.Equal(t, 1, sum.QuizAttempts)
	require.Len(t, sum.Recent, 1)
	assert.Equal(t, "Hello and goodbye", sum.Recent[0].LessonTitle)
}

func TestRandomQuizRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	items, err := h.client.RandomQuiz(ctx, 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, it := range items {
		require.NotNil(t, it.LessonID)
		require.NotNil(t, it.ItemIndex)
		assert.NotEmpty(t, it.QID)
	}

	answers := quiz.Answers{}
	for i, it := range items {
		if it.QType == api.QTypeTF {
			answers.Set(i, quiz.Bool(true))
		}
	}
	sub, err := quiz.BuildRandomSubmission(items, answers)
	require.NoError(t, err)

	res, err := h.client.SubmitRandomQuiz(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total, "unanswered items still count")
	assert.Len(t, res.Details, len(sub.Answers))
}

// correctSelection looks up the seeded answer for a random-quiz item.
func correctSelection(t *testing.T, srv *Server, it api.QuizItem) quiz.Selection {
	t.Helper()
	rec := srv.catalog.lessons[*it.LessonID]
	q := rec.detail.Questions[*it.ItemIndex]
	key := rec.keys[q.ID]
	switch q.QType {
	case api.QTypeMCQ:
		return quiz.Index(key.Index)
	case api.QTypeTF:
		return quiz.Bool(key.Value)
	case api.QTypeFill:
		return quiz.Text(key.Text)
	default:
		return quiz.Tokens(key.Tokens)
	}
}

func TestRandomQuizScoresAgainstServedItems(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	items, err := h.client.RandomQuiz(ctx, 5)
	require.NoError(t, err)
	require.Len(t, items, 5)

	answers := quiz.Answers{}
	answers.Set(0, correctSelection(t, h.srv, items[0]))
	sub, err := quiz.BuildRandomSubmission(items, answers)
	require.NoError(t, err)

	res, err := h.client.SubmitRandomQuiz(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 5, res.Total)
	assert.InDelta(t, 20.0, res.Score, 0.001)
}

func TestRandomQuizBadSize(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	_, err := h.client.RandomQuiz(context.Background(), 0)
	assert.True(t, api.IsValidation(err))
}

func TestGrade(t *testing.T) {
	mcq := api.QuizItem{QType: api.QTypeMCQ}
	fill := api.QuizItem{QType: api.QTypeFill}
	build := api.QuizItem{QType: api.QTypeBuild}

	assert.True(t, grade(mcq, answerKey{Index: 2}, []byte(`{"index":2}`)))
	assert.False(t, grade(mcq, answerKey{Index: 2}, []byte(`{"value":true}`)))
	assert.True(t, grade(fill, answerKey{Text: "water"}, []byte(`{"text":" Water "}`)))
	assert.False(t, grade(build, answerKey{Tokens: []string{"a", "b"}}, []byte(`{"tokens":["b","a"]}`)))
	assert.False(t, grade(mcq, answerKey{}, []byte(`not json`)))
}

func TestNextStreak(t *testing.T) {
	day := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	acct := &account{}
	assert.Equal(t, 1, nextStreak(acct, day))

	acct.Streak = 1
	acct.attempts = []attempt{{at: day}}
	assert.Equal(t, 1, nextStreak(acct, day.Add(time.Hour)))
	assert.Equal(t, 2, nextStreak(acct, day.Add(20*time.Hour)))
	assert.Equal(t, 1, nextStreak(acct, day.Add(72*time.Hour)))
}

func TestHealthzAndCORS(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/categories/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
