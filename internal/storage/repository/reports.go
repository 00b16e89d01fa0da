package repository

import (
	"context"

	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// InsertReport сохраняет жалобу и возвращает её с присвоенным ID.
func (s *Storage) InsertReport(ctx context.Context, report models.Report) (*models.Report, error) {
	const op = "storage.InsertReport"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var reporter *string
	if report.ReporterEmail != "" {
		reporter = &report.ReporterEmail
	}
	query := `INSERT INTO user_reports (reported_post_id, reporter_email, reason)
			  VALUES ($1, $2, $3)
			  RETURNING id::text, status, created_at`
	err := s.Pool.QueryRow(ctx, query, report.ReportedPostID, reporter, report.Reason).
		Scan(&report.ID, &report.Status, &report.CreatedAt)
	if err != nil {
		return nil, upstream(op, err)
	}
	return &report, nil
}
