package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeRequestID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "valid UUID",
			input:    "550e8400-e29b-41d4-a716-446655440000",
			expected: "550e8400-e29b-41d4-a716-446655440000",
		},
		{
			name:     "alphanumeric only",
			input:    "abc123XYZ",
			expected: "abc123XYZ",
		},
		{
			name:     "with underscore",
			input:    "req_abc_123",
			expected: "req_abc_123",
		},
		{
			name:     "with special characters",
			input:    "req<script>alert(1)</script>123",
			expected: "reqscriptalert1script123",
		},
		{
			name:     "with newlines (log injection attempt)",
			input:    "abc\n\rINFO: fake log",
			expected: "abcINFOfakelog",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "too long (should truncate)",
			input:    strings.Repeat("a", 100),
			expected: strings.Repeat("a", 64),
		},
		{
			name:     "control characters",
			input:    "req-\u0000\u001f\u007f-123",
			expected: "req--123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeRequestID(tt.input))
		})
	}
}

func TestRequestContextValues(t *testing.T) {
	ctx := context.Background()

	_, ok := GetRequestID(ctx)
	assert.False(t, ok)

	ctx = WithRequestID(ctx, "req-1")

	id, ok := GetRequestID(ctx)
	require.True(t, ok)
	assert.Equal(t, "req-1", id)

	// A plain string key must not shadow the typed key.
	polluted := context.WithValue(ctx, "request_id", "forged") //nolint:staticcheck
	id, _ = GetRequestID(polluted)
	assert.Equal(t, "req-1", id)
	assert.Equal(t, "req-1", loggedRequestID(t, polluted))
}

// loggedRequestID returns the request_id field LogWithRequestID attaches for ctx.
func loggedRequestID(t *testing.T, ctx context.Context) any {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	LogWithRequestID(ctx, zap.New(core).Sugar()).Info("tagged")
	require.Equal(t, 1, logs.Len())
	return logs.All()[0].ContextMap()["request_id"]
}

func TestRequestIDMiddleware_PropagatesToHandlerContext(t *testing.T) {
	env := setupTestAPI(t)

	var seen string
	handler := env.api.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set(requestIDHeader, "abc<>123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "abc123", seen)
	assert.Equal(t, "abc123", rr.Header().Get(requestIDHeader))
}

func TestLogWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core).Sugar()

	LogWithRequestID(WithRequestID(context.Background(), "req-42"), logger).Info("with id")
	LogWithRequestID(context.Background(), logger).Info("without id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "unknown", entries[1].ContextMap()["request_id"])

	assert.Nil(t, LogWithRequestID(context.Background(), nil))
}

func TestResponseWriterWrapper(t *testing.T) {
	recorder := httptest.NewRecorder()
	wrapper := &responseWriterWrapper{ResponseWriter: recorder, statusCode: http.StatusOK}

	wrapper.WriteHeader(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, wrapper.statusCode)

	wrapper.WriteHeader(http.StatusBadRequest)
	assert.Equal(t, http.StatusCreated, wrapper.statusCode, "first status wins")

	implicit := &responseWriterWrapper{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusTeapot}
	_, err := implicit.Write([]byte("ok"))
	require.NoError(t, err)
	assert.True(t, implicit.written)
	assert.Equal(t, http.StatusOK, implicit.statusCode)

	assert.Same(t, recorder, wrapper.Unwrap())
}

func TestRequestIDMiddleware_LogsCompletion(t *testing.T) {
	env := setupTestAPI(t)
	core, logs := observer.New(zapcore.InfoLevel)
	env.api.logger = zap.New(core).Sugar()

	req := httptest.NewRequest(http.MethodGet, "/api/examines/999", nil)
	req.Header.Set(requestIDHeader, "trace-me")
	rr := httptest.NewRecorder()
	env.api.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	completed := logs.FilterMessage("request_completed").All()
	require.Len(t, completed, 1)
	fields := completed[0].ContextMap()
	assert.Equal(t, "trace-me", fields["request_id"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
}
