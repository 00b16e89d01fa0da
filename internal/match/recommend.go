package match

import (
	"sort"

	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// DefaultLimit задаёт размер выдачи рекомендаций по умолчанию.
const DefaultLimit = 6

// Match связывает кандидата с его оценкой.
type Match struct {
	Post  models.Post
	Score int
}

// Recommend оценивает пул кандидатов для subject и возвращает не больше
// limit лучших по убыванию оценки. При равных оценках сохраняется порядок
// пула. Кандидаты той же роли и собственная публикация subject
// отбрасываются. limit <= 0 означает DefaultLimit.
func Recommend(subject models.Post, pool []models.Post, limit int) []Match {
	if limit <= 0 {
		limit = DefaultLimit
	}

	matches := make([]Match, 0, len(pool))
	for _, candidate := range pool {
		if candidate.Role == subject.Role || isSelf(subject, candidate) {
			continue
		}
		matches = append(matches, Match{
			Post:  candidate,
			Score: Score(subject, candidate),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func isSelf(subject, candidate models.Post) bool {
	if subject.ID != 0 && subject.ID == candidate.ID {
		return true
	}
	return subject.OwnerEmail != "" && subject.OwnerEmail == candidate.OwnerEmail
}
