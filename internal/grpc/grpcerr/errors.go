// Package grpcerr переводит ошибки сервисов в статусы gRPC и обратно.
package grpcerr

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
)

// StatusFromError переводит ошибку сервиса в статус gRPC.
func StatusFromError(err error) error {
	if err == nil {
		return nil
	}
	appErr, ok := apperror.As(err)
	if !ok {
		return status.Error(codes.Internal, "internal error")
	}
	switch {
	case errors.Is(appErr.Err, apperror.ErrValidation):
		return status.Error(codes.InvalidArgument, appErr.Message)
	case errors.Is(appErr.Err, apperror.ErrConflict):
		return status.Error(codes.AlreadyExists, appErr.Message)
	case errors.Is(appErr.Err, apperror.ErrNotFound):
		return status.Error(codes.NotFound, appErr.Message)
	case errors.Is(appErr.Err, apperror.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, appErr.Message)
	case errors.Is(appErr.Err, apperror.ErrPaymentRequired):
		return status.Error(codes.FailedPrecondition, appErr.Message)
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// ErrorFromStatus восстанавливает вид ошибки из статуса gRPC. Сбои
// транспорта и неизвестные коды становятся ErrUpstream.
func ErrorFromStatus(op string, err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return apperror.Upstream(op, err)
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return apperror.ValidationFailed("", st.Message())
	case codes.AlreadyExists:
		return &apperror.AppError{Err: apperror.ErrConflict, Message: st.Message()}
	case codes.NotFound:
		return &apperror.AppError{Err: apperror.ErrNotFound, Message: st.Message()}
	case codes.Unauthenticated:
		return apperror.Unauthorized(st.Message())
	default:
		return apperror.Upstream(op, err)
	}
}
