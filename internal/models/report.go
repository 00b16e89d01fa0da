package models

import "time"

// Report описывает жалобу на публикацию.
type Report struct {
	ID             string    `json:"id"`
	ReportedPostID int64     `json:"reported_post_id"`
	ReporterEmail  string    `json:"-"` // Пусто для анонимной жалобы
	Reason         string    `json:"reason"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReportRequest используется для приёма жалобы из JSON-запроса.
type ReportRequest struct {
	PostID int64  `json:"post_id" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"required,max=2000"`
}

// DomainVerification описывает попытку подтвердить владение доменом через TXT-запись.
type DomainVerification struct {
	UserEmail  string     `json:"-"`
	Domain     string     `json:"domain"`
	Code       string     `json:"code"`
	Verified   bool       `json:"verified"`
	CreatedAt  time.Time  `json:"created_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// DomainRequest используется для приёма домена из JSON-запроса.
type DomainRequest struct {
	Domain string `json:"domain" validate:"required,fqdn"`
}

// DomainChallenge возвращается пользователю после начала подтверждения домена.
type DomainChallenge struct {
	Domain       string `json:"domain"`
	RecordType   string `json:"record_type"`
	RecordName   string `json:"record_name"`
	RecordValue  string `json:"record_value"`
	Instructions string `json:"instructions"`
}
