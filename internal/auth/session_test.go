package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/store"
)

func openKV(t *testing.T) (store.KVRepo, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prava.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st.KV(), path
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "1"}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestLoginWithTokens(t *testing.T) {
	kv, _ := openKV(t)
	s := NewStore(kv, nil)
	ctx := context.Background()

	require.NoError(t, s.LoginWithTokens(ctx, "a1", "r1", &api.User{ID: 1, Username: "ana", XP: 10}))

	sess := s.Session()
	assert.True(t, sess.IsAuthenticated)
	assert.Equal(t, "a1", sess.AccessToken)
	assert.Equal(t, "r1", sess.RefreshToken)
	assert.Equal(t, "ana", sess.User.Username)
	assert.Equal(t, "a1", s.AccessToken())
}

func TestSessionSnapshotsAreIndependent(t *testing.T) {
	s := NewStore(nil, nil)
	user := &api.User{ID: 1, Username: "ana"}
	require.NoError(t, s.LoginWithTokens(context.Background(), "a", "r", user))

	user.Username = "mutated"
	snap := s.Session()
	assert.Equal(t, "ana", snap.User.Username)

	snap.User.XP = 999
	assert.Equal(t, 0, s.Session().User.XP, "snapshot user must not alias store state after SetUser")
}

func TestLogoutClearsPersistedSession(t *testing.T) {
	kv, _ := openKV(t)
	s := NewStore(kv, nil)
	ctx := context.Background()

	require.NoError(t, s.LoginWithTokens(ctx, "a1", "r1", nil))
	_, ok, err := kv.Get(ctx, sessionKey)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, Session{}, s.Session())

	_, ok, err = kv.Get(ctx, sessionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInitRestoresPersistedSession(t *testing.T) {
	_, path := openKV(t)
	ctx := context.Background()

	st, err := store.Open(path)
	require.NoError(t, err)
	first := NewStore(st.KV(), nil)
	require.NoError(t, first.LoginWithTokens(ctx, "opaque-token", "r1", &api.User{ID: 4, Username: "ion"}))
	st.Close()

	st, err = store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	second := NewStore(st.KV(), nil)
	sess, err := second.Init(ctx)
	require.NoError(t, err)
	assert.True(t, sess.IsAuthenticated)
	assert.Equal(t, "opaque-token", sess.AccessToken)
	assert.Equal(t, "ion", sess.User.Username)
}

func TestInitEmpty(t *testing.T) {
	kv, _ := openKV(t)
	sess, err := NewStore(kv, nil).Init(context.Background())
	require.NoError(t, err)
	assert.False(t, sess.IsAuthenticated)
}

func TestInitDiscardsCorruptRecord(t *testing.T) {
	kv, _ := openKV(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, sessionKey, "{not json"))

	sess, err := NewStore(kv, nil).Init(ctx)
	require.NoError(t, err)
	assert.False(t, sess.IsAuthenticated)
}

func TestTokenLive(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(nil, nil)
	s.now = func() time.Time { return now }

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"empty", "", false},
		{"opaque", "d2c1f0e8a9", true},
		{"jwt without exp", signedToken(t, time.Time{}), true},
		{"jwt in future", signedToken(t, now.Add(time.Hour)), true},
		{"jwt expired", signedToken(t, now.Add(-time.Minute)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.tokenLive(tt.token))
		})
	}
}

func TestInitWithExpiredJWTKeepsTokens(t *testing.T) {
	kv, _ := openKV(t)
	ctx := context.Background()
	expired := signedToken(t, time.Now().Add(-time.Hour))

	first := NewStore(kv, nil)
	require.NoError(t, first.LoginWithTokens(ctx, expired, "r1", nil))
	assert.True(t, first.Session().IsAuthenticated, "a fresh login trusts the server")

	sess, err := NewStore(kv, nil).Init(ctx)
	require.NoError(t, err)
	assert.False(t, sess.IsAuthenticated)
	assert.Equal(t, "r1", sess.RefreshToken)
}

func TestLoginIgnoresClockSkew(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(nil, nil)
	s.now = func() time.Time { return issued.Add(10 * time.Minute) }
	ctx := context.Background()

	access := signedToken(t, issued.Add(5*time.Minute))
	require.NoError(t, s.LoginWithTokens(ctx, access, "r1", &api.User{Username: "ana"}))
	assert.True(t, s.Session().IsAuthenticated, "login with a clock running ahead")

	mock := &api.MockClient{RefreshResp: &api.Tokens{Access: signedToken(t, issued.Add(5*time.Minute))}}
	require.NoError(t, s.Refresh(ctx, mock))
	assert.True(t, s.Session().IsAuthenticated, "refresh with a clock running ahead")

	require.NoError(t, s.LoginWithTokens(ctx, "", "", nil))
	assert.False(t, s.Session().IsAuthenticated)
}

func TestRefresh(t *testing.T) {
	s := NewStore(nil, nil)
	ctx := context.Background()
	require.NoError(t, s.LoginWithTokens(ctx, "old", "r1", &api.User{Username: "ana"}))

	mock := &api.MockClient{}
	require.NoError(t, s.Refresh(ctx, mock))

	sess := s.Session()
	assert.Equal(t, "refreshed-r1", sess.AccessToken)
	assert.Equal(t, "r1", sess.RefreshToken, "refresh token kept when not rotated")
	assert.True(t, sess.IsAuthenticated)
	assert.Equal(t, "ana", sess.User.Username)
}

func TestRefreshRotatesRefreshToken(t *testing.T) {
	s := NewStore(nil, nil)
	ctx := context.Background()
	require.NoError(t, s.LoginWithTokens(ctx, "old", "r1", nil))

	mock := &api.MockClient{RefreshResp: &api.Tokens{Access: "new", Refresh: "r2"}}
	require.NoError(t, s.Refresh(ctx, mock))
	assert.Equal(t, "r2", s.Session().RefreshToken)
}

func TestRefreshErrors(t *testing.T) {
	ctx := context.Background()

	s := NewStore(nil, nil)
	assert.ErrorIs(t, s.Refresh(ctx, &api.MockClient{}), ErrNoRefreshToken)

	require.NoError(t, s.LoginWithTokens(ctx, "a", "r", nil))
	boom := &api.Error{Status: 401, Message: "Token is blacklisted"}
	err := s.Refresh(ctx, &api.MockClient{RefreshErr: boom})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "a", s.Session().AccessToken, "failed refresh leaves session untouched")
}

func TestRequire(t *testing.T) {
	s := NewStore(nil, nil)
	_, err := s.Require()
	assert.True(t, errors.Is(err, ErrNotAuthenticated))

	require.NoError(t, s.LoginWithTokens(context.Background(), "a", "", nil))
	_, err = s.Require()
	assert.NoError(t, err)
}

func TestSubscribeReceivesEveryCommit(t *testing.T) {
	s := NewStore(nil, nil)
	ctx := context.Background()
	ch, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.LoginWithTokens(ctx, "a", "r", nil))
	require.NoError(t, s.SetUser(ctx, &api.User{Username: "ana"}))
	require.NoError(t, s.Logout(ctx))

	got := []Session{<-ch, <-ch, <-ch}
	assert.True(t, got[0].IsAuthenticated)
	assert.Equal(t, "ana", got[1].User.Username)
	assert.False(t, got[2].IsAuthenticated)
}

func TestSubscribeSlowConsumerGetsLatest(t *testing.T) {
	s := NewStore(nil, nil)
	ctx := context.Background()
	ch, cancel := s.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		require.NoError(t, s.SetUser(ctx, &api.User{XP: i}))
	}

	var last Session
	for len(ch) > 0 {
		last = <-ch
	}
	assert.Equal(t, subscriberBuffer+4, last.User.XP)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := NewStore(nil, nil)
	ch, cancel := s.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	require.NoError(t, s.Logout(context.Background()))
}
