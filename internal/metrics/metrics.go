// Package metrics объявляет метрики Prometheus сервиса. Метрики
// регистрируются в реестре по умолчанию и отдаются через promhttp на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sponsor_match"

var (
	// PostsCreated считает созданные публикации по роли.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_created_total",
		Help:      "Number of posts created, by role.",
	}, []string{"role"})

	// ContactUnlocks считает зафиксированные раскрытия контактов.
	// result: inserted или duplicate.
	ContactUnlocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_unlocks_total",
		Help:      "Number of contact unlock records, by result.",
	}, []string{"result"})

	// PaymentRequired считает запросы, остановленные требованием оплаты.
	PaymentRequired = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_required_total",
		Help:      "Number of requests blocked pending payment, by payment type.",
	}, []string{"payment_type"})

	// CheckoutSessions считает созданные сессии оплаты.
	CheckoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_sessions_total",
		Help:      "Number of checkout sessions started, by payment type.",
	}, []string{"payment_type"})

	// PaymentsCompleted считает завершённые оплаты.
	PaymentsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_completed_total",
		Help:      "Number of payments fulfilled, by payment type.",
	}, []string{"payment_type"})

	// RecommendationPoolCache считает обращения к кэшу пула кандидатов.
	// result: hit или miss.
	RecommendationPoolCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendation_pool_cache_total",
		Help:      "Recommendation candidate pool cache lookups, by result.",
	}, []string{"result"})

	// MatchScores распределение выданных оценок совместимости.
	MatchScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "match_score",
		Help:      "Distribution of match scores returned by recommendations.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})

	// HTTPRequestDuration длительность HTTP-запросов по маршруту и коду ответа.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by route pattern, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
