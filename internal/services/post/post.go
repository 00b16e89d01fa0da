// Package services содержит бизнес-логику публикаций: создание с проверкой
// оплаты, ленту с фильтрами, рекомендации и раскрытие контактов.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/match"
	"github.com/magabrotheeeer/sponsor-match/internal/metrics"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
	"github.com/magabrotheeeer/sponsor-match/internal/reveal"
)

// Ограничения ленты публикаций.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// PostRepository определяет методы для работы с публикациями в хранилище.
type PostRepository interface {
	// InsertPost сохраняет публикацию. Повтор для того же владельца даёт ErrConflict.
	InsertPost(ctx context.Context, post models.Post) (*models.Post, error)
	// FindPostByID возвращает публикацию или ErrNotFound.
	FindPostByID(ctx context.Context, id int64) (*models.Post, error)
	// FindPostByOwnerEmail возвращает публикацию владельца или ErrNotFound.
	FindPostByOwnerEmail(ctx context.Context, email string) (*models.Post, error)
	// ListPostsByRole возвращает публикации роли, новые первыми.
	ListPostsByRole(ctx context.Context, role models.Role, excludingID int64) ([]models.Post, error)
	// ListPosts возвращает ленту по фильтру, новые первыми.
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	// DeletePostByOwnerEmail удаляет публикацию владельца.
	DeletePostByOwnerEmail(ctx context.Context, email string) (bool, error)
}

// Gate описывает правила раскрытия контактов.
type Gate interface {
	CheckPostCreation(ctx context.Context, requester models.Identity, contact string) error
	CanViewContact(ctx context.Context, viewer *models.Identity, target models.Post) (reveal.Visibility, error)
	RequiresPayment(ctx context.Context, requester *models.Identity, target models.Post) (bool, error)
	Apply(ctx context.Context, viewer *models.Identity, posts []models.Post) ([]models.PostView, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значения из кеша по ключам.
	Invalidate(ctx context.Context, keys ...string) error
}

// PostService реализует бизнес-логику публикаций.
type PostService struct {
	repo         PostRepository
	gate         Gate
	cache        Cache
	log          *slog.Logger
	poolTTL      time.Duration
	defaultLimit int
}

// New создает новый экземпляр PostService.
func New(log *slog.Logger, repo PostRepository, gate Gate, cache Cache, poolTTL time.Duration, defaultLimit int) *PostService {
	if defaultLimit <= 0 {
		defaultLimit = match.DefaultLimit
	}
	return &PostService{
		repo:         repo,
		gate:         gate,
		cache:        cache,
		log:          log,
		poolTTL:      poolTTL,
		defaultLimit: defaultLimit,
	}
}

// poolEntry хранит публикацию в кеше вместе с почтой владельца, которая
// не попадает в JSON самой публикации.
type poolEntry struct {
	models.Post
	OwnerEmail string `json:"owner_email"`
}

func poolKey(role models.Role) string {
	return "posts:pool:" + string(role)
}

// Create проверяет запрос, право на размещение и сохраняет публикацию.
// Контакт созданной публикации виден владельцу.
func (s *PostService) Create(ctx context.Context, identity models.Identity, req models.CreatePostRequest) (*models.PostView, error) {
	const op = "services.post.Create"

	role, err := models.ParseRole(req.UserType)
	if err != nil {
		return nil, apperror.ValidationFailed("user_type", "user_type must be creator or sponsor")
	}
	platform, err := models.ParsePlatform(req.Platform)
	if err != nil {
		return nil, apperror.ValidationFailed("platform", "unsupported platform")
	}
	interests := models.ParseInterests(req.Interests)
	if len(interests) == 0 {
		return nil, apperror.ValidationFailed("interests", "at least one interest is required")
	}
	if req.Followers < 0 {
		return nil, apperror.ValidationFailed("followers", "followers must not be negative")
	}
	if req.PricePoint < 0 {
		return nil, apperror.ValidationFailed("price_point", "price_point must not be negative")
	}
	contact := strings.TrimSpace(req.ContactInfo)

	if err = s.gate.CheckPostCreation(ctx, identity, contact); err != nil {
		if appErr, ok := apperror.As(err); ok && appErr.Purpose != "" {
			metrics.PaymentRequired.WithLabelValues(string(appErr.Purpose)).Inc()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	post, err := s.repo.InsertPost(ctx, models.Post{
		UserID:      identity.AccountID,
		OwnerEmail:  identity.Email,
		Role:        role,
		Name:        strings.TrimSpace(req.Name),
		Platform:    platform,
		Followers:   req.Followers,
		PricePoint:  req.PricePoint,
		Description: strings.TrimSpace(req.Description),
		ContactInfo: contact,
		Interests:   interests,
		Avatar:      req.Avatar,
		Verified:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created new post", slog.Int64("id", post.ID), slog.String("role", string(post.Role)))
	metrics.PostsCreated.WithLabelValues(string(post.Role)).Inc()
	s.invalidatePool(ctx, post.Role)

	view := reveal.View(*post, reveal.Visibility{Visible: true, Reason: reveal.ReasonOwnPost})
	return &view, nil
}

// List возвращает ленту публикаций с контактами, скрытыми для viewer.
func (s *PostService) List(ctx context.Context, viewer *models.Identity, filter models.PostFilter) ([]models.PostView, error) {
	const op = "services.post.List"

	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultListLimit
	case filter.Limit > MaxListLimit:
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	posts, err := s.repo.ListPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	views, err := s.gate.Apply(ctx, viewer, posts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return views, nil
}

// Get возвращает одну публикацию для viewer.
func (s *PostService) Get(ctx context.Context, viewer *models.Identity, id int64) (*models.PostView, error) {
	const op = "services.post.Get"

	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "post id must be positive")
	}
	post, err := s.repo.FindPostByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	vis, err := s.gate.CanViewContact(ctx, viewer, *post)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	view := reveal.View(*post, vis)
	return &view, nil
}

// Delete удаляет публикацию владельца.
func (s *PostService) Delete(ctx context.Context, identity models.Identity) error {
	const op = "services.post.Delete"

	deleted, err := s.repo.DeletePostByOwnerEmail(ctx, identity.Email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !deleted {
		return apperror.NotFound("post", identity.Email)
	}
	s.log.Info("deleted post", slog.String("owner", identity.Email))
	s.invalidatePool(ctx, models.RoleCreator, models.RoleSponsor)
	return nil
}

// Recommend подбирает для публикации identity до limit публикаций
// противоположной роли. При limit <= 0 используется лимит из конфигурации.
func (s *PostService) Recommend(ctx context.Context, identity models.Identity, limit int) ([]models.MatchView, error) {
	const op = "services.post.Recommend"

	subject, err := s.repo.FindPostByOwnerEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pool, err := s.candidatePool(ctx, subject.Role.Opposite())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}
	matches := match.Recommend(*subject, pool, limit)

	posts := make([]models.Post, 0, len(matches))
	for _, m := range matches {
		posts = append(posts, m.Post)
	}
	views, err := s.gate.Apply(ctx, &identity, posts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]models.MatchView, 0, len(views))
	for i, v := range views {
		metrics.MatchScores.Observe(float64(matches[i].Score))
		result = append(result, models.MatchView{PostView: v, MatchScore: matches[i].Score})
	}
	return result, nil
}

// RevealContact возвращает публикацию с настоящим контактом либо ошибку
// ErrPaymentRequired, если раскрытие не оплачено.
func (s *PostService) RevealContact(ctx context.Context, identity models.Identity, postID int64) (*models.PostView, error) {
	const op = "services.post.RevealContact"

	if postID <= 0 {
		return nil, apperror.ValidationFailed("id", "post id must be positive")
	}
	post, err := s.repo.FindPostByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	required, err := s.gate.RequiresPayment(ctx, &identity, *post)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if required {
		metrics.PaymentRequired.WithLabelValues(string(models.PurposeContactReveal)).Inc()
		return nil, apperror.PaymentRequired(models.PurposeContactReveal,
			"payment required to reveal contact for post "+strconv.FormatInt(postID, 10))
	}
	vis, err := s.gate.CanViewContact(ctx, &identity, *post)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	view := reveal.View(*post, vis)
	return &view, nil
}

// candidatePool читает публикации роли из кеша, а при промахе из хранилища.
// Ошибки кеша не прерывают запрос.
func (s *PostService) candidatePool(ctx context.Context, role models.Role) ([]models.Post, error) {
	key := poolKey(role)

	var cached []poolEntry
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read candidate pool from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		metrics.RecommendationPoolCache.WithLabelValues("hit").Inc()
		pool := make([]models.Post, 0, len(cached))
		for _, e := range cached {
			p := e.Post
			p.OwnerEmail = e.OwnerEmail
			pool = append(pool, p)
		}
		return pool, nil
	}
	metrics.RecommendationPoolCache.WithLabelValues("miss").Inc()

	pool, err := s.repo.ListPostsByRole(ctx, role, 0)
	if err != nil {
		return nil, err
	}

	entries := make([]poolEntry, 0, len(pool))
	for _, p := range pool {
		entries = append(entries, poolEntry{Post: p, OwnerEmail: p.OwnerEmail})
	}
	if err = s.cache.Set(ctx, key, entries, s.poolTTL); err != nil {
		s.log.Warn("failed to cache candidate pool", slog.String("key", key), sl.Err(err))
	}
	return pool, nil
}

func (s *PostService) invalidatePool(ctx context.Context, roles ...models.Role) {
	keys := make([]string, 0, len(roles))
	for _, r := range roles {
		keys = append(keys, poolKey(r))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to invalidate candidate pool", slog.Any("keys", keys), sl.Err(err))
	}
}
