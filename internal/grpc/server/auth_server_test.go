package server

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	authpb "github.com/magabrotheeeer/sponsor-match/internal/grpc/gen"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// MockAuthService - мок для AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Verify(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*models.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

// Убеждаемся, что MockAuthService реализует интерфейс AuthServiceInterface
var _ AuthServiceInterface = (*MockAuthService)(nil)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Сервер должен удовлетворять сгенерированному интерфейсу
var _ authpb.AuthServiceServer = (*AuthServer)(nil)

func TestNewAuthServer(t *testing.T) {
	mockService := new(MockAuthService)
	logger := newNoopLogger()

	server := NewAuthServer(mockService, logger)

	assert.NotNil(t, server)
	assert.Equal(t, mockService, server.authService)
	assert.Equal(t, logger, server.log)
}

func TestAuthServer_Register(t *testing.T) {
	tests := []struct {
		name         string
		request      *authpb.RegisterRequest
		mockSetup    func(*MockAuthService)
		expectedCode codes.Code
		expectedUID  string
	}{
		{
			name:    "successful registration",
			request: &authpb.RegisterRequest{Email: "test@example.com", Password: "password123"},
			mockSetup: func(m *MockAuthService) {
				m.On("Register", mock.Anything, "test@example.com", "password123").Return("uid-1", nil)
			},
			expectedCode: codes.OK,
			expectedUID:  "uid-1",
		},
		{
			name:    "verified email already taken",
			request: &authpb.RegisterRequest{Email: "test@example.com", Password: "password123"},
			mockSetup: func(m *MockAuthService) {
				m.On("Register", mock.Anything, "test@example.com", "password123").
					Return("", apperror.Conflict("account", "test@example.com"))
			},
			expectedCode: codes.AlreadyExists,
		},
		{
			name:    "short password",
			request: &authpb.RegisterRequest{Email: "test@example.com", Password: "short"},
			mockSetup: func(m *MockAuthService) {
				m.On("Register", mock.Anything, "test@example.com", "short").
					Return("", apperror.ValidationFailed("password", "password must be at least 8 characters"))
			},
			expectedCode: codes.InvalidArgument,
		},
		{
			name:         "nil request",
			request:      nil,
			mockSetup:    func(*MockAuthService) {},
			expectedCode: codes.InvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			tt.mockSetup(mockService)
			server := NewAuthServer(mockService, newNoopLogger())

			resp, err := server.Register(context.Background(), tt.request)

			if tt.expectedCode != codes.OK {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, status.Code(err))
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedUID, resp.GetUserUid())
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestAuthServer_Verify(t *testing.T) {
	mockService := new(MockAuthService)
	mockService.On("Verify", mock.Anything, "good").Return("a@example.com", nil)
	mockService.On("Verify", mock.Anything, "stale").
		Return("", apperror.ValidationFailed("token", "invalid or expired verification token"))
	server := NewAuthServer(mockService, newNoopLogger())

	resp, err := server.Verify(context.Background(), &authpb.VerifyRequest{Token: "good"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", resp.GetEmail())

	_, err = server.Verify(context.Background(), &authpb.VerifyRequest{Token: "stale"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestAuthServer_Login(t *testing.T) {
	tests := []struct {
		name         string
		mockErr      error
		expectedCode codes.Code
	}{
		{name: "success", expectedCode: codes.OK},
		{name: "wrong password", mockErr: apperror.Unauthorized("invalid credentials"), expectedCode: codes.Unauthenticated},
		{name: "unverified", mockErr: apperror.Unauthorized("email not verified"), expectedCode: codes.Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			token := ""
			if tt.mockErr == nil {
				token = "jwt"
			}
			mockService.On("Login", mock.Anything, "a@example.com", "password123").Return(token, tt.mockErr)
			server := NewAuthServer(mockService, newNoopLogger())

			resp, err := server.Login(context.Background(), &authpb.LoginRequest{Email: "a@example.com", Password: "password123"})

			assert.Equal(t, tt.expectedCode, status.Code(err))
			if tt.expectedCode == codes.OK {
				assert.Equal(t, "jwt", resp.GetToken())
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestAuthServer_ValidateToken(t *testing.T) {
	mockService := new(MockAuthService)
	mockService.On("ValidateToken", mock.Anything, "good").
		Return(&models.Identity{AccountID: "uid-1", Email: "a@example.com"}, nil)
	mockService.On("ValidateToken", mock.Anything, "bad").
		Return(nil, apperror.Unauthorized("invalid token"))
	server := NewAuthServer(mockService, newNoopLogger())

	resp, err := server.ValidateToken(context.Background(), &authpb.ValidateTokenRequest{Token: "good"})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", resp.GetAccountId())
	assert.Equal(t, "a@example.com", resp.GetEmail())

	_, err = server.ValidateToken(context.Background(), &authpb.ValidateTokenRequest{Token: "bad"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
