// Package services принимает жалобы на публикации.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

const maxReasonLength = 2000

// Repository описывает хранилище жалоб.
type Repository interface {
	FindPostByID(ctx context.Context, id int64) (*models.Post, error)
	InsertReport(ctx context.Context, report models.Report) (*models.Report, error)
}

// ReportService сохраняет жалобы на публикации.
type ReportService struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр ReportService.
func New(log *slog.Logger, repo Repository) *ReportService {
	return &ReportService{repo: repo, log: log}
}

// Submit сохраняет жалобу на публикацию postID. reporter может быть nil
// для анонимной жалобы.
func (s *ReportService) Submit(ctx context.Context, reporter *models.Identity, postID int64, reason string) (*models.Report, error) {
	const op = "services.report.Submit"

	reason = strings.TrimSpace(reason)
	switch {
	case postID <= 0:
		return nil, apperror.ValidationFailed("post_id", "post id is required")
	case reason == "":
		return nil, apperror.ValidationFailed("reason", "reason is required")
	case len(reason) > maxReasonLength:
		return nil, apperror.ValidationFailed("reason", "reason is too long")
	}

	if _, err := s.repo.FindPostByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	report := models.Report{ReportedPostID: postID, Reason: reason}
	if reporter != nil {
		report.ReporterEmail = reporter.Email
	}
	saved, err := s.repo.InsertReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("report submitted", slog.String("id", saved.ID), slog.Int64("post_id", postID))
	return saved, nil
}
