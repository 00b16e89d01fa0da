// Package services содержит логику бизнес-уровня для работы с учётными записями:
// регистрацию, подтверждение почты, вход и проверку токенов доступа.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/jwt"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/password"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

const minPasswordLength = 8

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет неподтверждённого пользователя и возвращает его UID.
	// Занятая почта даёт ErrConflict.
	CreateUser(ctx context.Context, email, passwordHash string) (string, error)

	// GetUserByEmail возвращает пользователя по почте или ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// ResetUnverifiedPassword меняет пароль, только если почта не подтверждена.
	ResetUnverifiedPassword(ctx context.Context, email, passwordHash string) (bool, error)

	// CreateVerificationToken заменяет прежние токены пользователя новым.
	CreateVerificationToken(ctx context.Context, token models.VerificationToken) error

	// ConsumeVerificationToken гасит токен и подтверждает почту владельца.
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (string, error)
}

// Publisher отправляет уведомления в очередь.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// AuthService отвечает за регистрацию, подтверждение почты, вход и валидацию JWT.
type AuthService struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	publisher Publisher
	log       *slog.Logger
	tokenTTL  time.Duration
	baseURL   string
	now       func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(log *slog.Logger, users UserRepository, jwtMaker jwt.Maker, publisher Publisher, tokenTTL time.Duration, baseURL string) *AuthService {
	return &AuthService{
		users:     users,
		jwtMaker:  jwtMaker,
		publisher: publisher,
		log:       log,
		tokenTTL:  tokenTTL,
		baseURL:   strings.TrimRight(baseURL, "/"),
		now:       time.Now,
	}
}

// Register создаёт неподтверждённую учётную запись и отправляет письмо со
// ссылкой подтверждения. Повторная регистрация неподтверждённой почты
// меняет пароль и выпускает новый токен, а подтверждённой даёт ErrConflict.
func (s *AuthService) Register(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "services.auth.Register"

	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperror.ValidationFailed("email", "email is required")
	}
	if len(rawPassword) < minPasswordLength {
		return "", apperror.ValidationFailed("password", "password must be at least 8 characters")
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", apperror.ValidationFailed("password", "password cannot be hashed")
	}

	uid, err := s.users.CreateUser(ctx, email, hashed)
	switch {
	case err == nil:
		s.log.Info("registered new user", slog.String("uid", uid))
	case errors.Is(err, apperror.ErrConflict):
		reset, err := s.users.ResetUnverifiedPassword(ctx, email, hashed)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if !reset {
			return "", apperror.Conflict("account", email)
		}
		user, err := s.users.GetUserByEmail(ctx, email)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		uid = user.UUID
		s.log.Info("re-issuing verification for unverified user", slog.String("uid", uid))
	default:
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = s.issueVerification(ctx, email); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

func (s *AuthService) issueVerification(ctx context.Context, email string) error {
	now := s.now().UTC()
	token := models.VerificationToken{
		Token:     uuid.NewString(),
		UserEmail: email,
		ExpiresAt: now.Add(s.tokenTTL),
		CreatedAt: now,
	}
	if err := s.users.CreateVerificationToken(ctx, token); err != nil {
		return err
	}

	msg := models.VerificationMessage{
		Email: email,
		Link:  s.baseURL + "/api/v1/verify/" + token.Token,
	}
	if err := s.publisher.Publish(rabbitmq.RoutingVerification, msg); err != nil {
		s.log.Error("failed to publish verification email", slog.String("email", email), sl.Err(err))
	}
	return nil
}

// Verify гасит одноразовый токен и возвращает подтверждённую почту.
func (s *AuthService) Verify(ctx context.Context, token string) (string, error) {
	const op = "services.auth.Verify"

	if strings.TrimSpace(token) == "" {
		return "", apperror.ValidationFailed("token", "verification token is required")
	}
	email, err := s.users.ConsumeVerificationToken(ctx, token, s.now().UTC())
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.ValidationFailed("token", "invalid or expired verification token")
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email verified", slog.String("email", email))
	return email, nil
}

// Login проверяет пароль и подтверждение почты и выпускает JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthorized("invalid credentials")
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", apperror.Unauthorized("invalid credentials")
		}
		return "", apperror.Upstream(op, err)
	}
	if !user.Verified {
		return "", apperror.Unauthorized("email not verified")
	}

	token, err := s.jwtMaker.GenerateToken(user.UUID, user.Email)
	if err != nil {
		return "", apperror.Upstream(op, err)
	}
	return token, nil
}

// ValidateToken проверяет JWT и возвращает личность вызывающего.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.Identity, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, apperror.Unauthorized("invalid token")
	}
	return &models.Identity{
		AccountID: claims.UserUID,
		Email:     claims.Email,
	}, nil
}
