package read

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Get(ctx context.Context, viewer *models.Identity, id int64) (*models.PostView, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostView), args.Error(1)
}

func TestReadHandler(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Get", mock.Anything, (*models.Identity)(nil), int64(5)).
		Return(&models.PostView{Post: models.Post{ID: 5, Name: "Alice"}, ContactHidden: true}, nil)
	svc.On("Get", mock.Anything, (*models.Identity)(nil), int64(99)).
		Return(nil, apperror.NotFound("post", "99"))

	r := chi.NewRouter()
	r.Method(http.MethodGet, "/posts/{id}", New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "found", path: "/posts/5", wantStatus: http.StatusOK, wantBody: `"name":"Alice"`},
		{name: "missing", path: "/posts/99", wantStatus: http.StatusNotFound, wantBody: "post not found"},
		{name: "not a number", path: "/posts/abc", wantStatus: http.StatusBadRequest, wantBody: "invalid post id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
