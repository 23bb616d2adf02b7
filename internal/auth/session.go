// Package auth holds the client session: tokens, the user profile and the
// derived authenticated flag. It is the only shared mutable state in the
// client; every change goes through Store.commit and is broadcast to
// subscribers.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/logger"
	"github.com/abhisek/prava/internal/store"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a live session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNoRefreshToken is returned by Refresh when no refresh token is stored.
	ErrNoRefreshToken = errors.New("no refresh token")
)

// sessionKey is the KV key the session is persisted under.
const sessionKey = "session"

// subscriberBuffer bounds each subscriber channel. When full, the oldest
// pending session is dropped so the newest one always arrives.
const subscriberBuffer = 8

// Session is an immutable snapshot of the client session.
type Session struct {
	AccessToken     string
	RefreshToken    string
	User            *api.User
	IsAuthenticated bool
}

// persisted is the on-disk form. IsAuthenticated is derived on load.
type persisted struct {
	Access  string    `json:"access"`
	Refresh string    `json:"refresh,omitempty"`
	User    *api.User `json:"user,omitempty"`
}

// Store owns the session.
type Store struct {
	mu    sync.Mutex
	state Session

	kv  store.KVRepo
	log *logger.Logger
	now func() time.Time

	subs   map[int]chan Session
	nextID int
}

var _ api.TokenSource = (*Store)(nil)

// NewStore creates an empty, unauthenticated Store. kv may be nil, in which
// case the session lives in memory only.
func NewStore(kv store.KVRepo, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{kv: kv, log: log, now: time.Now, subs: make(map[int]chan Session)}
}

// Session returns the current snapshot.
func (s *Store) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// AccessToken implements api.TokenSource.
func (s *Store) AccessToken() string {
	return s.Session().AccessToken
}

// Require returns the current session, or ErrNotAuthenticated.
func (s *Store) Require() (Session, error) {
	sess := s.Session()
	if !sess.IsAuthenticated {
		return sess, ErrNotAuthenticated
	}
	return sess, nil
}

// Subscribe returns a channel that receives every session committed after
// the call, and a function that unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Session, subscriberBuffer)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// LoginWithTokens stores a freshly issued token pair and, when known, the
// user profile. A token the server just issued counts as authenticated
// whatever the local clock says about its expiry.
func (s *Store) LoginWithTokens(ctx context.Context, access, refresh string, user *api.User) error {
	return s.commit(ctx, func(Session) Session {
		return Session{
			AccessToken:     access,
			RefreshToken:    refresh,
			User:            cloneUser(user),
			IsAuthenticated: access != "",
		}
	})
}

// SetUser replaces the user profile, e.g. after GET /me/.
func (s *Store) SetUser(ctx context.Context, user *api.User) error {
	return s.commit(ctx, func(cur Session) Session {
		cur.User = cloneUser(user)
		return cur
	})
}

// Logout clears the session and its persisted copy.
func (s *Store) Logout(ctx context.Context) error {
	return s.commit(ctx, func(Session) Session { return Session{} })
}

// Init loads the persisted session and re-derives IsAuthenticated from the
// access token without a network call. A missing or unreadable record
// leaves the store logged out.
func (s *Store) Init(ctx context.Context) (Session, error) {
	if s.kv == nil {
		return s.Session(), nil
	}
	raw, ok, err := s.kv.Get(ctx, sessionKey)
	if err != nil {
		return s.Session(), fmt.Errorf("load session: %w", err)
	}

	var p persisted
	if ok {
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			s.log.Warn("discarding unreadable session", "error", err)
			p = persisted{}
		}
	}

	var out Session
	err = s.commit(ctx, func(Session) Session {
		out = Session{
			AccessToken:     p.Access,
			RefreshToken:    p.Refresh,
			User:            p.User,
			IsAuthenticated: s.tokenLive(p.Access),
		}
		return out
	})
	return out, err
}

// Refresher is the subset of api.Client used by Refresh.
type Refresher interface {
	RefreshToken(ctx context.Context, refresh string) (*api.Tokens, error)
}

// Refresh exchanges the stored refresh token for a new access token. The
// refresh token is rotated when the server returns a new one.
func (s *Store) Refresh(ctx context.Context, c Refresher) error {
	refresh := s.Session().RefreshToken
	if refresh == "" {
		return ErrNoRefreshToken
	}

	tokens, err := c.RefreshToken(ctx, refresh)
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	return s.commit(ctx, func(cur Session) Session {
		cur.AccessToken = tokens.Access
		if tokens.Refresh != "" {
			cur.RefreshToken = tokens.Refresh
		}
		cur.IsAuthenticated = tokens.Access != ""
		return cur
	})
}

// commit applies fn to the current session, persists the result and
// broadcasts it. The in-memory state is updated even when persisting fails.
func (s *Store) commit(ctx context.Context, fn func(Session) Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.state)
	s.state = next

	err := s.persist(ctx, next)
	if err != nil {
		s.log.Warn("failed to persist session", "error", err)
	}

	for _, ch := range s.subs {
		select {
		case ch <- next.clone():
		default:
			select {
			case <-ch:
			default:
			}
			ch <- next.clone()
		}
	}
	return err
}

func (s *Store) persist(ctx context.Context, sess Session) error {
	if s.kv == nil {
		return nil
	}
	if sess.AccessToken == "" && sess.RefreshToken == "" {
		return s.kv.Delete(ctx, sessionKey)
	}
	b, err := json.Marshal(persisted{Access: sess.AccessToken, Refresh: sess.RefreshToken, User: sess.User})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.kv.Set(ctx, sessionKey, string(b))
}

// tokenLive reports whether an access token should count as authenticated.
// Opaque tokens and JWTs without exp are trusted; the server has the final
// say on the next request.
func (s *Store) tokenLive(access string) bool {
	if access == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(s.now())
}

func (s Session) clone() Session {
	s.User = cloneUser(s.User)
	return s
}

func cloneUser(u *api.User) *api.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
