package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

const postColumns = `id, user_uid::text, owner_email, user_type, name, platform, followers,
	price_point::float8, description, contact_info, interests, avatar, verified, created_at`

func scanPost(row pgx.Row) (*models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.UserID, &p.OwnerEmail, &p.Role, &p.Name, &p.Platform,
		&p.Followers, &p.PricePoint, &p.Description, &p.ContactInfo, &p.Interests,
		&p.Avatar, &p.Verified, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPosts(rows pgx.Rows) ([]models.Post, error) {
	defer rows.Close()
	result := make([]models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// InsertPost сохраняет публикацию. Если у владельца уже есть публикация,
// возвращает apperror.ErrConflict: уникальность обеспечивает база.
func (s *Storage) InsertPost(ctx context.Context, post models.Post) (*models.Post, error) {
	const op = "storage.InsertPost"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	if post.Interests == nil {
		post.Interests = []string{}
	}
	query := `INSERT INTO posts (user_uid, owner_email, user_type, name, platform, followers,
			      price_point, description, contact_info, interests, avatar, verified)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			  RETURNING id, created_at`
	err := s.Pool.QueryRow(ctx, query,
		post.UserID, post.OwnerEmail, post.Role, post.Name, post.Platform, post.Followers,
		post.PricePoint, post.Description, post.ContactInfo, post.Interests, post.Avatar,
		post.Verified).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("post", post.OwnerEmail)
		}
		return nil, upstream(op, err)
	}
	return &post, nil
}

// FindPostByID возвращает публикацию по идентификатору.
func (s *Storage) FindPostByID(ctx context.Context, id int64) (*models.Post, error) {
	const op = "storage.FindPostByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	p, err := scanPost(s.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("post", strconv.FormatInt(id, 10))
		}
		return nil, upstream(op, err)
	}
	return p, nil
}

// FindPostByOwnerEmail возвращает публикацию владельца.
func (s *Storage) FindPostByOwnerEmail(ctx context.Context, email string) (*models.Post, error) {
	const op = "storage.FindPostByOwnerEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE owner_email = $1`
	p, err := scanPost(s.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("post", email)
		}
		return nil, upstream(op, err)
	}
	return p, nil
}

// ListPostsByRole возвращает публикации роли role, кроме excludingID,
// от новых к старым.
func (s *Storage) ListPostsByRole(ctx context.Context, role models.Role, excludingID int64) ([]models.Post, error) {
	const op = "storage.ListPostsByRole"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + postColumns + `
			  FROM posts
			  WHERE user_type = $1 AND id <> $2
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.Pool.Query(ctx, query, role, excludingID)
	if err != nil {
		return nil, upstream(op, err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, upstream(op, err)
	}
	return posts, nil
}

// ListPosts возвращает ленту публикаций с фильтрами, от новых к старым.
func (s *Storage) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	const op = "storage.ListPosts"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query, args := buildListQuery(filter)
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, upstream(op, err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, upstream(op, err)
	}
	return posts, nil
}

func buildListQuery(filter models.PostFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Role != "" {
		add("user_type = $%d", filter.Role)
	}
	if filter.Platform != "" {
		add("platform = $%d", filter.Platform)
	}
	if filter.MinFollowers != nil {
		add("followers >= $%d", *filter.MinFollowers)
	}
	if filter.MaxFollowers != nil {
		add("followers <= $%d", *filter.MaxFollowers)
	}
	if filter.MinPrice != nil {
		add("price_point >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price_point <= $%d", *filter.MaxPrice)
	}
	if filter.Interest != "" {
		add(`EXISTS (SELECT 1 FROM unnest(interests) AS tag WHERE tag ILIKE '%%' || $%d || '%%' ESCAPE '\')`,
			escapeLike(strings.TrimSpace(filter.Interest)))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(postColumns)
	b.WriteString(" FROM posts")
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	return b.String(), args
}

// DeletePostByOwnerEmail удаляет публикацию владельца. Возвращает false,
// если удалять было нечего.
func (s *Storage) DeletePostByOwnerEmail(ctx context.Context, email string) (bool, error) {
	const op = "storage.DeletePostByOwnerEmail"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	tag, err := s.Pool.Exec(ctx, `DELETE FROM posts WHERE owner_email = $1`, email)
	if err != nil {
		return false, upstream(op, err)
	}
	return tag.RowsAffected() > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike экранирует метасимволы шаблона LIKE, чтобы подстрока искалась буквально.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
