// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков: успешных ответов, ошибок
// валидации и ошибок сервисов с кодом статуса по их виду.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status: статус запроса ("OK" или "Error").
// Поле Error: текст ошибки (опционально, при неуспехе).
// Поле Data: данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse описывает ошибку для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
	Field  string `json:"field,omitempty" example:"email"`
}

// PaymentRequiredResponse описывает ответ 402: действие станет доступно после оплаты.
type PaymentRequiredResponse struct {
	Status          string `json:"status" example:"Error"`
	Error           string `json:"error" example:"payment required to view contact"`
	RequiresPayment bool   `json:"requires_payment" example:"true"`
	PaymentType     string `json:"payment_type" example:"contact_reveal"`
}

const (
	// StatusOK ставится в успешный ответ.
	StatusOK = "OK"
	// StatusError ставится в ответ с ошибкой.
	StatusError = "Error"
)

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "fqdn":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a domain name", err.Field()))
		case "min", "max", "gt", "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must satisfy %s=%s", err.Field(), err.ActualTag(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// FromError возвращает код статуса и тело ответа для ошибки сервиса.
// Ошибки хранилища и провайдера не раскрывают подробностей клиенту.
func FromError(err error) (int, any) {
	appErr, ok := apperror.As(err)
	if !ok {
		return http.StatusInternalServerError, Error("internal error")
	}
	switch {
	case errors.Is(appErr.Err, apperror.ErrValidation):
		return http.StatusUnprocessableEntity, ErrorResponse{Status: StatusError, Error: appErr.Message, Field: appErr.Field}
	case errors.Is(appErr.Err, apperror.ErrConflict):
		return http.StatusConflict, Error(appErr.Message)
	case errors.Is(appErr.Err, apperror.ErrPaymentRequired):
		return http.StatusPaymentRequired, PaymentRequiredResponse{
			Status:          StatusError,
			Error:           appErr.Message,
			RequiresPayment: true,
			PaymentType:     string(appErr.Purpose),
		}
	case errors.Is(appErr.Err, apperror.ErrNotFound):
		return http.StatusNotFound, Error(appErr.Message)
	case errors.Is(appErr.Err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, Error(appErr.Message)
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}

// RenderError пишет ответ для ошибки сервиса.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := FromError(err)
	render.Status(r, status)
	render.JSON(w, r, body)
}
