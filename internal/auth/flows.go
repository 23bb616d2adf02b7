package auth

import (
	"context"
	"fmt"

	"github.com/abhisek/prava/internal/api"
)

// Login authenticates with username and password, stores the token pair
// and makes sure the session carries a user profile. When the login body
// omits the user, GET /me/ is called with the new token.
func Login(ctx context.Context, c api.Client, s *Store, username, password string) (Session, error) {
	resp, err := c.Login(ctx, username, password)
	if err != nil {
		return Session{}, err
	}
	if err := s.LoginWithTokens(ctx, resp.Access, resp.Refresh, resp.User); err != nil {
		return s.Session(), err
	}

	if resp.User == nil {
		user, err := c.Me(ctx)
		if err != nil {
			// Tokens are valid; the dashboard will fetch the profile again.
			s.log.Warn("fetch profile after login failed", "error", err)
			return s.Session(), nil
		}
		if err := s.SetUser(ctx, user); err != nil {
			return s.Session(), err
		}
	}

	s.log.Info("logged in", "username", username)
	return s.Session(), nil
}

// Register creates an account and immediately logs in with the same
// credentials.
func Register(ctx context.Context, c api.Client, s *Store, req api.RegisterRequest) (Session, error) {
	if _, err := c.Register(ctx, req); err != nil {
		return Session{}, err
	}
	sess, err := Login(ctx, c, s, req.Username, req.Password)
	if err != nil {
		return sess, fmt.Errorf("login after register: %w", err)
	}
	return sess, nil
}
