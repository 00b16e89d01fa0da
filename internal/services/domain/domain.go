// Package services подтверждает владение доменом через TXT-запись DNS.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// CodePrefix предшествует случайной части кода в TXT-записи.
const CodePrefix = "sponsor-match-verification="

// Repository описывает хранилище подтверждений доменов.
type Repository interface {
	UpsertDomainVerification(ctx context.Context, dv models.DomainVerification) error
	GetDomainVerification(ctx context.Context, email, domain string) (*models.DomainVerification, error)
	MarkDomainVerified(ctx context.Context, email, domain string) error
}

// Resolver читает TXT-записи домена. *net.Resolver подходит без обёртки.
type Resolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// DomainService выдаёт коды подтверждения и проверяет их в DNS.
type DomainService struct {
	repo     Repository
	resolver Resolver
	log      *slog.Logger
	timeout  time.Duration
}

// New создает новый экземпляр DomainService.
func New(log *slog.Logger, repo Repository, resolver Resolver) *DomainService {
	return &DomainService{
		repo:     repo,
		resolver: resolver,
		log:      log,
		timeout:  5 * time.Second,
	}
}

func normalizeDomain(domain string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
}

// Start выпускает новый код для домена и возвращает инструкцию по
// добавлению TXT-записи. Прежний код для того же домена перестаёт действовать.
func (s *DomainService) Start(ctx context.Context, identity models.Identity, domain string) (*models.DomainChallenge, error) {
	const op = "services.domain.Start"

	domain = normalizeDomain(domain)
	if domain == "" {
		return nil, apperror.ValidationFailed("domain", "domain is required")
	}

	code := CodePrefix + uuid.NewString()
	err := s.repo.UpsertDomainVerification(ctx, models.DomainVerification{
		UserEmail: identity.Email,
		Domain:    domain,
		Code:      code,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("domain verification started", slog.String("domain", domain))
	return &models.DomainChallenge{
		Domain:       domain,
		RecordType:   "TXT",
		RecordName:   domain,
		RecordValue:  code,
		Instructions: fmt.Sprintf("Add a TXT record to %s with the value %s, then run the check.", domain, code),
	}, nil
}

// Check ищет выданный код среди TXT-записей домена. Отсутствие записи не
// ошибка: возвращается подтверждение с Verified = false.
func (s *DomainService) Check(ctx context.Context, identity models.Identity, domain string) (*models.DomainVerification, error) {
	const op = "services.domain.Check"

	domain = normalizeDomain(domain)
	if domain == "" {
		return nil, apperror.ValidationFailed("domain", "domain is required")
	}

	dv, err := s.repo.GetDomainVerification(ctx, identity.Email, domain)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if dv.Verified {
		return dv, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	records, err := s.resolver.LookupTXT(lookupCtx, domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return dv, nil
		}
		return nil, apperror.Upstream(op, err)
	}

	for _, r := range records {
		if strings.TrimSpace(r) != dv.Code {
			continue
		}
		if err = s.repo.MarkDomainVerified(ctx, identity.Email, domain); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		now := time.Now().UTC()
		dv.Verified = true
		dv.VerifiedAt = &now
		s.log.Info("domain verified", slog.String("domain", domain))
		return dv, nil
	}
	return dv, nil
}
