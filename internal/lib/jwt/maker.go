// Package jwt реализует выпуск и проверку bearer-токенов доступа.
//
// Токен подписывается HS256 и несёт UID учётной записи и подтверждённую почту.
package jwt

import (
	"time"
)

// Maker описывает выпуск и разбор токенов доступа.
type Maker interface {
	GenerateToken(userUID, email string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с секретным ключом и временем жизни токена.
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}
