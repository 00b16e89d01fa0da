package grpcerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
)

func TestStatusRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode codes.Code
		wantKind error
	}{
		{name: "validation", err: apperror.ValidationFailed("email", "email is required"), wantCode: codes.InvalidArgument, wantKind: apperror.ErrValidation},
		{name: "conflict", err: apperror.Conflict("account", "a@example.com"), wantCode: codes.AlreadyExists, wantKind: apperror.ErrConflict},
		{name: "not found", err: apperror.NotFound("user", "x"), wantCode: codes.NotFound, wantKind: apperror.ErrNotFound},
		{name: "unauthorized", err: apperror.Unauthorized("invalid credentials"), wantCode: codes.Unauthenticated, wantKind: apperror.ErrUnauthorized},
		{name: "upstream", err: apperror.Upstream("storage.CreateUser", errors.New("db down")), wantCode: codes.Internal, wantKind: apperror.ErrUpstream},
		{name: "plain error", err: errors.New("boom"), wantCode: codes.Internal, wantKind: apperror.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := StatusFromError(tt.err)
			assert.Equal(t, tt.wantCode, status.Code(st))

			back := ErrorFromStatus("client.Call", st)
			assert.ErrorIs(t, back, tt.wantKind)
		})
	}
}

func TestStatusFromError_HidesInternalDetails(t *testing.T) {
	st := StatusFromError(apperror.Upstream("storage.CreateUser", errors.New("password=secret")))
	assert.NotContains(t, status.Convert(st).Message(), "secret")
}

func TestNilErrors(t *testing.T) {
	assert.NoError(t, StatusFromError(nil))
	assert.NoError(t, ErrorFromStatus("op", nil))
}
