package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVs_RedactsSecrets(t *testing.T) {
	l := Nop()
	got := l.sanitizeKVs([]interface{}{
		"access_token", "abc",
		"Password", "hunter2",
		"path", "/lessons/7/",
		"status", 200,
	})

	assert.Equal(t, []interface{}{
		"access_token", "[REDACTED]",
		"Password", "[REDACTED]",
		"path", "/lessons/7/",
		"status", 200,
	}, got)
}

func TestSanitizeKVs_MasksJWTValues(t *testing.T) {
	l := Nop()
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	got := l.sanitizeKVs([]interface{}{"header", jwt})
	assert.Equal(t, "[REDACTED]", got[1])
}

func TestSanitizeKVs_HashesUserIDsWhenEnabled(t *testing.T) {
	l := &Logger{SugaredLogger: Nop().SugaredLogger, hashIDs: true}
	got := l.sanitizeKVs([]interface{}{"user_id", 42, "lesson_id", 7})

	s, ok := got[1].(string)
	assert.True(t, ok)
	assert.Contains(t, s, "hash:")
	assert.Equal(t, 7, got[3])
}

func TestSanitizeKVs_OddLength(t *testing.T) {
	l := Nop()
	got := l.sanitizeKVs([]interface{}{"path", "/me/", "dangling"})
	assert.Equal(t, []interface{}{"path", "/me/", "dangling"}, got)
}

func TestNew_Stderr(t *testing.T) {
	l, err := New(Options{Mode: "dev", File: "-"})
	assert.NoError(t, err)
	l.Info("hello", "k", "v")
}

func TestNew_File(t *testing.T) {
	path := t.TempDir() + "/logs/prava.log"
	l, err := New(Options{Mode: "prod", File: path})
	assert.NoError(t, err)
	l.Warn("written", "n", 1)
	l.Sync()
}
