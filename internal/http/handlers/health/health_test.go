package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		checks     map[string]Pinger
		wantStatus int
		wantBody   string
	}{
		{name: "all up", checks: map[string]Pinger{"postgres": ok, "redis": ok}, wantStatus: http.StatusOK, wantBody: `"redis":"ok"`},
		{name: "redis down", checks: map[string]Pinger{"postgres": ok, "redis": down}, wantStatus: http.StatusServiceUnavailable, wantBody: `"redis":"down"`},
		{name: "no checks", checks: nil, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(logger, tt.checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
