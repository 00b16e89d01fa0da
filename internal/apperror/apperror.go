// Package apperror описывает типизированные ошибки доменного уровня.
//
// Сервисы возвращают *AppError, транспортный слой (HTTP-обработчики и
// gRPC-сервер) сопоставляет вид ошибки с кодом ответа через errors.Is.
package apperror

import (
	"errors"
	"fmt"

	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// Виды ошибок.
var (
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrPaymentRequired = errors.New("payment required")
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUpstream        = errors.New("upstream failure")
)

// AppError описывает ошибку с видом, сообщением для клиента и необязательной причиной.
type AppError struct {
	Err     error                 // Вид ошибки, один из Err*
	Message string                // Сообщение для клиента
	Field   string                // Поле запроса, если ошибка валидации
	Purpose models.PaymentPurpose // Назначение платежа для ErrPaymentRequired
	Cause   error                 // Исходная ошибка коллаборатора
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap позволяет errors.Is находить и вид ошибки, и исходную причину.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// ValidationFailed сообщает о некорректном или отсутствующем вводе.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict сообщает о нарушении уникальности при записи.
func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists for %s", resource, key),
	}
}

// PaymentRequired сообщает, что действие заблокировано до оплаты.
func PaymentRequired(purpose models.PaymentPurpose, message string) *AppError {
	return &AppError{
		Err:     ErrPaymentRequired,
		Message: message,
		Purpose: purpose,
	}
}

// NotFound сообщает, что запрошенной сущности нет.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// Unauthorized сообщает о неверных учётных данных или неподтверждённой почте.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Upstream сообщает о сбое хранилища или платёжного провайдера. Повторов ядро не делает.
func Upstream(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: op,
		Cause:   cause,
	}
}

// As возвращает *AppError из цепочки ошибок.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
