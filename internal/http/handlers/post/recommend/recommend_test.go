package recommend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Recommend(ctx context.Context, identity models.Identity, limit int) ([]models.MatchView, error) {
	args := m.Called(ctx, identity, limit)
	views, _ := args.Get(0).([]models.MatchView)
	return views, args.Error(1)
}

func TestRecommendHandler(t *testing.T) {
	identity := &models.Identity{AccountID: "uid-1", Email: "alice@example.com"}
	matches := []models.MatchView{
		{PostView: models.PostView{Post: models.Post{ID: 11}}, MatchScore: 80},
		{PostView: models.PostView{Post: models.Post{ID: 12}}, MatchScore: 45},
	}

	tests := []struct {
		name       string
		identity   *models.Identity
		query      string
		mockSetup  func(*ServiceMock)
		wantStatus int
		wantCount  int
	}{
		{
			name:     "default limit",
			identity: identity,
			mockSetup: func(m *ServiceMock) {
				m.On("Recommend", mock.Anything, *identity, 0).Return(matches, nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  2,
		},
		{
			name:     "explicit limit",
			identity: identity,
			query:    "?limit=1",
			mockSetup: func(m *ServiceMock) {
				m.On("Recommend", mock.Anything, *identity, 1).Return(matches[:1], nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  1,
		},
		{
			name:       "bad limit",
			identity:   identity,
			query:      "?limit=-3",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:     "no own post",
			identity: identity,
			mockSetup: func(m *ServiceMock) {
				m.On("Recommend", mock.Anything, *identity, 0).Return(nil, apperror.NotFound("post", identity.Email))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "anonymous",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.mockSetup != nil {
				tt.mockSetup(svc)
			}
			req := httptest.NewRequest(http.MethodGet, "/recommendations"+tt.query, nil)
			if tt.identity != nil {
				req = req.WithContext(middlewarectx.WithIdentity(req.Context(), tt.identity))
			}
			rec := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				var resp struct {
					Data struct {
						Count int                `json:"list_count"`
						Items []models.MatchView `json:"recommendations"`
					} `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantCount, resp.Data.Count)
				assert.Equal(t, 80, resp.Data.Items[0].MatchScore)
			}
			svc.AssertExpectations(t)
		})
	}
}
