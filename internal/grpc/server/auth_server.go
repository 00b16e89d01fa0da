// Package server реализует gRPC-сервер сервиса идентификации.
//
// AuthServer принимает запросы регистрации, подтверждения почты, входа и
// проверки JWT, логирует их и делегирует логику AuthService. Ошибки сервиса
// переводятся в коды gRPC.
package server

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	authpb "github.com/magabrotheeeer/sponsor-match/internal/grpc/gen"
	"github.com/magabrotheeeer/sponsor-match/internal/grpc/grpcerr"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// AuthServiceInterface описывает операции сервиса идентификации, которые нужны серверу.
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password string) (string, error)
	Verify(ctx context.Context, token string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (*models.Identity, error)
}

// AuthServer реализует gRPC-сервис идентификации
type AuthServer struct {
	authpb.UnimplementedAuthServiceServer
	authService AuthServiceInterface
	log         *slog.Logger
}

// NewAuthServer создает новый экземпляр AuthServer с указанным сервисом аутентификации и логгером.
func NewAuthServer(authService AuthServiceInterface, logger *slog.Logger) *AuthServer {
	return &AuthServer{
		authService: authService,
		log:         logger,
	}
}

var errEmptyRequest = apperror.ValidationFailed("", "request body is required")

// Register создает нового пользователя
func (s *AuthServer) Register(ctx context.Context, req *authpb.RegisterRequest) (*authpb.RegisterResponse, error) {
	if req == nil {
		return nil, grpcerr.StatusFromError(errEmptyRequest)
	}
	s.log.Info("Register request", slog.String("email", req.GetEmail()))

	uid, err := s.authService.Register(ctx, req.GetEmail(), req.GetPassword())
	if err != nil {
		s.log.Error("Register failed", slog.String("email", req.GetEmail()), sl.Err(err))
		return nil, grpcerr.StatusFromError(err)
	}
	return &authpb.RegisterResponse{UserUid: uid}, nil
}

// Verify подтверждает почту по токену из письма
func (s *AuthServer) Verify(ctx context.Context, req *authpb.VerifyRequest) (*authpb.VerifyResponse, error) {
	s.log.Info("Verify request")

	email, err := s.authService.Verify(ctx, req.GetToken())
	if err != nil {
		s.log.Error("Verify failed", sl.Err(err))
		return nil, grpcerr.StatusFromError(err)
	}
	return &authpb.VerifyResponse{Email: email}, nil
}

// Login проверяет пользователя и генерирует JWT
func (s *AuthServer) Login(ctx context.Context, req *authpb.LoginRequest) (*authpb.LoginResponse, error) {
	if req == nil {
		return nil, grpcerr.StatusFromError(errEmptyRequest)
	}
	s.log.Info("Login request", slog.String("email", req.GetEmail()))

	token, err := s.authService.Login(ctx, req.GetEmail(), req.GetPassword())
	if err != nil {
		s.log.Error("Login failed", slog.String("email", req.GetEmail()), sl.Err(err))
		return nil, grpcerr.StatusFromError(err)
	}
	return &authpb.LoginResponse{Token: token}, nil
}

// ValidateToken проверяет валидность JWT и возвращает данные пользователя
func (s *AuthServer) ValidateToken(ctx context.Context, req *authpb.ValidateTokenRequest) (*authpb.ValidateTokenResponse, error) {
	identity, err := s.authService.ValidateToken(ctx, req.GetToken())
	if err != nil {
		s.log.Warn("Invalid token", sl.Err(err))
		return nil, grpcerr.StatusFromError(err)
	}
	return &authpb.ValidateTokenResponse{
		AccountId: identity.AccountID,
		Email:     identity.Email,
	}, nil
}
