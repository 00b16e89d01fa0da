// Package client содержит клиент gRPC-сервиса идентификации для API-шлюза.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	authpb "github.com/magabrotheeeer/sponsor-match/internal/grpc/gen"
	"github.com/magabrotheeeer/sponsor-match/internal/grpc/grpcerr"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// AuthClient вызывает сервис идентификации. Ошибки возвращаются как *apperror.AppError.
type AuthClient struct {
	conn   *grpc.ClientConn
	client authpb.AuthServiceClient
}

// NewAuthClient создаёт клиента. Соединение устанавливается лениво при первом вызове.
func NewAuthClient(addr string, opts ...grpc.DialOption) (*AuthClient, error) {
	const op = "client.NewAuthClient"

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AuthClient{conn: conn, client: authpb.NewAuthServiceClient(conn)}, nil
}

func (a *AuthClient) Close() error {
	return a.conn.Close()
}

// Register создаёт учётную запись и возвращает её UID.
func (a *AuthClient) Register(ctx context.Context, email, password string) (string, error) {
	const op = "client.Register"

	resp, err := a.client.Register(ctx, &authpb.RegisterRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return "", grpcerr.ErrorFromStatus(op, err)
	}
	return resp.GetUserUid(), nil
}

// Verify подтверждает почту и возвращает её.
func (a *AuthClient) Verify(ctx context.Context, token string) (string, error) {
	const op = "client.Verify"

	resp, err := a.client.Verify(ctx, &authpb.VerifyRequest{Token: token})
	if err != nil {
		return "", grpcerr.ErrorFromStatus(op, err)
	}
	return resp.GetEmail(), nil
}

// Login возвращает JWT.
func (a *AuthClient) Login(ctx context.Context, email, password string) (string, error) {
	const op = "client.Login"

	resp, err := a.client.Login(ctx, &authpb.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return "", grpcerr.ErrorFromStatus(op, err)
	}
	return resp.GetToken(), nil
}

// ValidateToken возвращает личность владельца токена.
func (a *AuthClient) ValidateToken(ctx context.Context, token string) (*models.Identity, error) {
	const op = "client.ValidateToken"

	resp, err := a.client.ValidateToken(ctx, &authpb.ValidateTokenRequest{Token: token})
	if err != nil {
		return nil, grpcerr.ErrorFromStatus(op, err)
	}
	return &models.Identity{
		AccountID: resp.GetAccountId(),
		Email:     resp.GetEmail(),
	}, nil
}
