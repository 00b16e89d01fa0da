package check

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Check(ctx context.Context, identity models.Identity, domain string) (*models.DomainVerification, error) {
	args := m.Called(ctx, identity, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DomainVerification), args.Error(1)
}

func TestCheckHandler(t *testing.T) {
	identity := &models.Identity{AccountID: "uid-1", Email: "alice@example.com"}

	tests := []struct {
		name       string
		domain     string
		result     *models.DomainVerification
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "verified", domain: "alice.dev", result: &models.DomainVerification{Domain: "alice.dev", Verified: true}, wantStatus: http.StatusOK, wantBody: `"verified":true`},
		{name: "record not published yet", domain: "alice.dev", result: &models.DomainVerification{Domain: "alice.dev"}, wantStatus: http.StatusOK, wantBody: `"verified":false`},
		{name: "not started", domain: "bob.dev", err: apperror.NotFound("domain verification", "bob.dev"), wantStatus: http.StatusNotFound},
		{name: "dns failure", domain: "alice.dev", err: apperror.Upstream("domain.Check", errors.New("SERVFAIL")), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("Check", mock.Anything, *identity, tt.domain).Return(tt.result, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/domains/check", bytes.NewBufferString(`{"domain":"`+tt.domain+`"}`))
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), identity))
			rec := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
