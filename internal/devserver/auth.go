package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/prava/internal/api"
)

type ctxKey struct{}

var errUserExists = errors.New("user exists")

func (s *Server) issueAccess(userID int) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		Issuer:    "prava-devserver",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.AccessTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.Secret))
}

func (s *Server) parseAccess(tok string) (int, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(claims.Subject)
}

// issuePair mints an access token and a fresh opaque refresh token.
// Caller holds s.mu.
func (s *Server) issuePair(userID int) (api.Tokens, error) {
	access, err := s.issueAccess(userID)
	if err != nil {
		return api.Tokens{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh := uuid.NewString()
	s.refresh[refresh] = userID
	return api.Tokens{Access: access, Refresh: refresh}, nil
}

// createUser registers an account. It takes s.mu itself.
func (s *Server) createUser(username, email, password string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[strings.ToLower(username)]; ok {
		return nil, errUserExists
	}
	a := &account{
		User:         api.User{ID: s.nextID, Username: username, Email: email, Level: 1},
		passwordHash: hash,
		progress:     make(map[int]int),
	}
	s.nextID++
	s.users[strings.ToLower(username)] = a
	s.byID[a.ID] = a
	return a, nil
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		id, err := s.parseAccess(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}
		s.mu.Lock()
		_, ok := s.byID[id]
		s.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// currentAccount returns the caller's account. Caller holds s.mu.
func (s *Server) currentAccount(r *http.Request) *account {
	id, _ := r.Context().Value(ctxKey{}).(int)
	return s.byID[id]
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	if strings.TrimSpace(req.Username) == "" {
		errs.add("username", "This field may not be blank.")
	}
	if req.Password == "" {
		errs.add("password", "This field may not be blank.")
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	s.mu.Lock()
	a, ok := s.users[strings.ToLower(req.Username)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(a.passwordHash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Unable to log in with provided credentials."},
		})
		return
	}

	s.mu.Lock()
	tokens, err := s.issuePair(a.ID)
	user := a.User
	s.mu.Unlock()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, api.LoginResponse{Tokens: tokens, User: &user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	if strings.TrimSpace(req.Username) == "" {
		errs.add("username", "This field may not be blank.")
	} else if len(req.Username) > 150 {
		errs.add("username", "Ensure this field has no more than 150 characters.")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		errs.add("email", "Enter a valid email address.")
	}
	if len(req.Password) < 8 {
		errs.add("password", "This password is too short. It must contain at least 8 characters.")
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	a, err := s.createUser(req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, errUserExists):
		writeJSON(w, http.StatusBadRequest, fieldErrors{"username": {"A user with that username already exists."}})
		return
	case err != nil:
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, a.User)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Refresh == "" {
		writeJSON(w, http.StatusBadRequest, fieldErrors{"refresh": {"This field may not be blank."}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.refresh[req.Refresh]
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	// Rotate: the old refresh token is single-use.
	delete(s.refresh, req.Refresh)
	tokens, err := s.issuePair(id)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	user := s.currentAccount(r).User
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, user)
}
