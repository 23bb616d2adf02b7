package api

import (
	"net/http"

	"github.com/abhisek/prava/internal/logger"
	"github.com/abhisek/prava/internal/store"
)

// New creates a Client from configuration.
// Requests flow: caller → retry → logging → HTTP, so each retry attempt is
// logged on its own.
func New(cfg Config, tokens TokenSource, eventRepo store.EventRepo, log *logger.Logger) *Service {
	base := NewHTTPDoer(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout}, tokens, cfg.UserAgent)
	logged := WithLogging(base, eventRepo, log)
	retried := WithRetry(logged, cfg.Retry)
	return NewService(retried)
}
