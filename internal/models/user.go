package models

import "time"

// User представляет зарегистрированную учётную запись.
type User struct {
	UUID              string    // Уникальный идентификатор пользователя
	Email             string    // Электронная почта, уникальна с учётом регистра
	PasswordHash      string    // Хэш пароля пользователя
	Verified          bool      // Подтверждена ли почта
	PaymentCustomerID string    // Идентификатор клиента у платёжного провайдера, может быть пустым
	CreatedAt         time.Time // Дата регистрации
}

// Identity описывает вызывающего по данным bearer-токена.
type Identity struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
}

// VerificationToken подтверждает почту один раз.
type VerificationToken struct {
	Token     string
	UserEmail string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// VerificationMessage публикуется в очередь уведомлений после регистрации.
type VerificationMessage struct {
	Email string `json:"email"`
	Link  string `json:"link"`
}

// Credentials используется для приёма данных из JSON-запросов регистрации и входа.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}
