package api

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/prava/internal/logger"
	"github.com/abhisek/prava/internal/store"
)

// LoggingDoer is a decorator that records every request in the local
// request log and the structured log.
type LoggingDoer struct {
	inner     Doer
	eventRepo store.EventRepo
	log       *logger.Logger
}

// WithLogging wraps a Doer with request logging. Either sink may be nil.
func WithLogging(d Doer, repo store.EventRepo, log *logger.Logger) Doer {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingDoer{inner: d, eventRepo: repo, log: log}
}

func (l *LoggingDoer) Do(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Do(ctx, req)
	latency := time.Since(start)

	data := store.RequestEventData{
		RequestID: RequestIDFrom(ctx),
		Method:    req.Method,
		Path:      req.Path,
		Purpose:   PurposeFrom(ctx),
		LatencyMs: latency.Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.Status = resp.Status
		data.RequestID = resp.RequestID
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		var apiErr *Error
		if errors.As(err, &apiErr) {
			data.Status = apiErr.Status
		}
		l.log.Warn("api request failed",
			"method", req.Method, "path", req.Path, "status", data.Status,
			"latency_ms", data.LatencyMs, "purpose", data.Purpose, "error", err)
	} else {
		l.log.Debug("api request",
			"method", req.Method, "path", req.Path, "status", data.Status,
			"latency_ms", data.LatencyMs, "purpose", data.Purpose)
	}

	// Log the event but don't fail the request if logging fails.
	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendRequestEvent(context.WithoutCancel(ctx), data); logErr != nil {
			l.log.Warn("failed to record request event", "error", logErr)
		}
	}

	return resp, err
}
