package paymentwebhook

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/paymentprovider"
)

const secret = "whsec_test"

type MockService struct {
	mock.Mock
}

func (m *MockService) HandleWebhook(ctx context.Context, event *paymentprovider.Event) error {
	return m.Called(ctx, event).Error(0)
}

func signedRequest(payload []byte, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set(paymentprovider.SignatureHeader, signature)
	}
	return req
}

func sign(payload []byte, secret string, at time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	}).Header
}

func TestHandler_ServeHTTP(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","payment_status":"paid"}}}`)
	valid := sign(payload, secret, time.Now())

	tests := []struct {
		name       string
		signature  string
		serviceErr error
		callSvc    bool
		wantStatus int
	}{
		{name: "processed", signature: valid, callSvc: true, wantStatus: http.StatusOK},
		{name: "missing signature", wantStatus: http.StatusBadRequest},
		{name: "wrong secret", signature: sign(payload, "other", time.Now()), wantStatus: http.StatusBadRequest},
		{name: "stale signature", signature: sign(payload, secret, time.Now().Add(-time.Hour)), wantStatus: http.StatusBadRequest},
		{
			name:       "unknown session is acknowledged",
			signature:  valid,
			callSvc:    true,
			serviceErr: apperror.ValidationFailed("session_id", "unknown checkout session"),
			wantStatus: http.StatusOK,
		},
		{
			name:       "storage failure asks for redelivery",
			signature:  valid,
			callSvc:    true,
			serviceErr: apperror.Upstream("storage.CompletePaymentSession", errors.New("db down")),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.callSvc {
				svc.On("HandleWebhook", mock.Anything, mock.MatchedBy(func(e *paymentprovider.Event) bool {
					return e.ID == "evt_1" && e.Type == paymentprovider.EventCheckoutCompleted
				})).Return(tt.serviceErr)
			}
			h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, secret, 5*time.Minute)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, signedRequest(payload, tt.signature))

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}
