// Package models содержит доменные структуры маркетплейса: публикации
// (анкеты авторов и спонсоров), учётные записи, факты оплаты и
// вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Role задаёт сторону маркетплейса, от лица которой размещена публикация.
type Role string

const (
	// RoleCreator обозначает автора контента.
	RoleCreator Role = "creator"
	// RoleSponsor обозначает спонсора (рекламодателя).
	RoleSponsor Role = "sponsor"
)

// ParseRole проверяет строку из запроса и возвращает Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCreator:
		return RoleCreator, nil
	case RoleSponsor:
		return RoleSponsor, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Opposite возвращает противоположную сторону: creator <-> sponsor.
func (r Role) Opposite() Role {
	if r == RoleCreator {
		return RoleSponsor
	}
	return RoleCreator
}

// Platform задаёт площадку, на которой работает автор или ищет аудиторию спонсор.
type Platform string

// Поддерживаемые площадки.
const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter"
	PlatformTwitch    Platform = "twitch"
	PlatformLinkedIn  Platform = "linkedin"
)

var platforms = map[Platform]struct{}{
	PlatformYouTube:   {},
	PlatformInstagram: {},
	PlatformTikTok:    {},
	PlatformTwitter:   {},
	PlatformTwitch:    {},
	PlatformLinkedIn:  {},
}

// ParsePlatform сравнивает без учёта регистра и возвращает площадку в нижнем регистре.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := platforms[p]; !ok {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

// Post описывает опубликованную анкету автора или спонсора.
//
// Followers для автора означает число подписчиков, для спонсора размер
// целевой аудитории. PricePoint для автора означает ставку, для спонсора бюджет.
// У одного владельца может быть не больше одной публикации.
type Post struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"-"`
	OwnerEmail  string    `json:"-"`
	Role        Role      `json:"user_type"`
	Name        string    `json:"name,omitempty"`
	Platform    Platform  `json:"platform"`
	Followers   int64     `json:"followers"`
	PricePoint  float64   `json:"price_point"`
	Description string    `json:"description"`
	ContactInfo string    `json:"contact_info"`
	Interests   []string  `json:"interests"`
	Avatar      string    `json:"avatar,omitempty"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// PostView показывает публикацию так, как её видит конкретный зритель.
type PostView struct {
	Post
	ContactHidden bool   `json:"contact_hidden"`
	ContactReason string `json:"contact_reason"`
}

// MatchView описывает рекомендацию с оценкой совместимости.
type MatchView struct {
	PostView
	MatchScore int `json:"match_score"`
}

// PostFilter описывает фильтры ленты публикаций. Нулевые значения не фильтруют.
type PostFilter struct {
	Role         Role
	Platform     Platform
	MinFollowers *int64
	MaxFollowers *int64
	MinPrice     *float64
	MaxPrice     *float64
	Interest     string
	Limit        int
	Offset       int
}

// CreatePostRequest используется для приёма данных из JSON-запроса на создание публикации.
// Interests приходят строкой через запятую, как в форме на фронтенде.
type CreatePostRequest struct {
	UserType    string  `json:"user_type" validate:"required"`
	Name        string  `json:"name" validate:"max=255"`
	Platform    string  `json:"platform" validate:"required"`
	Followers   int64   `json:"followers" validate:"gte=0"`
	Interests   string  `json:"interests" validate:"required"`
	PricePoint  float64 `json:"price_point" validate:"gte=0"`
	Description string  `json:"description" validate:"required"`
	ContactInfo string  `json:"contact_info" validate:"required,email"`
	Avatar      string  `json:"avatar" validate:"max=10"`
}

// ParseInterests разбивает строку интересов по запятым, обрезает пробелы
// и отбрасывает пустые и повторяющиеся (без учёта регистра) теги, сохраняя порядок.
func ParseInterests(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		tag := strings.TrimSpace(p)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, tag)
	}
	return result
}
