package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "validation", err: apperror.ValidationFailed("role", "unknown role"), wantStatus: http.StatusUnprocessableEntity},
		{name: "conflict", err: apperror.Conflict("post", "a@example.com"), wantStatus: http.StatusConflict},
		{name: "payment required", err: apperror.PaymentRequired(models.PurposePostingFee, "posting fee required"), wantStatus: http.StatusPaymentRequired},
		{name: "not found", err: apperror.NotFound("post", "7"), wantStatus: http.StatusNotFound},
		{name: "unauthorized", err: apperror.Unauthorized("invalid token"), wantStatus: http.StatusUnauthorized},
		{name: "upstream", err: apperror.Upstream("storage.InsertPost", errors.New("db down")), wantStatus: http.StatusInternalServerError},
		{name: "untyped", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestRenderError_PaymentRequired(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/posts/3/reveal", nil)

	RenderError(rec, req, apperror.PaymentRequired(models.PurposeContactReveal, "payment required to view contact"))

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["requires_payment"])
	assert.Equal(t, "contact_reveal", body["payment_type"])
}

func TestRenderError_HidesUpstreamCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)

	RenderError(rec, req, apperror.Upstream("storage.ListPosts", errors.New("password authentication failed")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
		Name  string `validate:"required"`
	}
	err := validator.New().Struct(payload{Email: "nope"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Name is a required field")
}
