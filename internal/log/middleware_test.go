package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{
		Handler:   slog.NewTextHandler(buf, nil),
		Component: ComponentHTTP,
	})
}

func TestMiddlewareInstallsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	var got *Logger
	h := Middleware(logger)(
		RequestIDMiddleware(func(*http.Request) string { return "req_fixed" })(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = FromContext(r.Context())
			})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("context logger = %+v, want component %s", got, ComponentHTTP)
	}
	got.Info("ping")
	if !strings.Contains(buf.String(), "request_id=req_fixed") {
		t.Errorf("log output %q missing request id", buf.String())
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	if logger.Component() != "unknown" {
		t.Errorf("Component() = %q, want unknown", logger.Component())
	}
}

func TestStructuredLoggerHTTPEndLevels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{name: "success stays info", status: http.StatusOK, want: "level=INFO"},
		{name: "client error warns", status: http.StatusUnprocessableEntity, want: "level=WARN"},
		{name: "server error errors", status: http.StatusInternalServerError, want: "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			sl := NewStructuredLogger(newBufferLogger(&buf))
			req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)

			sl.LogHTTPEnd(context.Background(), req, tt.status, 12, "10.0.0.1")

			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q, want %s", out, tt.want)
			}
			if !strings.Contains(out, "status_code="+strconv.Itoa(tt.status)) {
				t.Errorf("output %q missing status_code", out)
			}
		})
	}
}
