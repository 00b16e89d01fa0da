// Package match считает совместимость автора и спонсора и строит
// рекомендации. Функции пакета чистые и безопасны для конкурентного вызова.
package match

import (
	"math"
	"strings"

	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// Веса компонент оценки, в сумме 100.
const (
	InterestWeight = 40
	PriceWeight    = 35
	PlatformWeight = 15
	AudienceWeight = 10
)

// Breakdown хранит вклад каждой компоненты в итоговую оценку до округления.
type Breakdown struct {
	Interests float64
	Price     float64
	Platform  float64
	Audience  float64
}

// Total возвращает сумму компонент, округлённую половиной вверх и ограниченную [0,100].
func (b Breakdown) Total() int {
	total := math.Floor(b.Interests + b.Price + b.Platform + b.Audience + 0.5)
	switch {
	case total < 0:
		return 0
	case total > 100:
		return 100
	}
	return int(total)
}

// Score возвращает оценку совместимости candidate для subject в диапазоне [0,100].
//
// Предполагается, что роли публикаций противоположны; фильтрацией пула
// занимается Recommend.
func Score(subject, candidate models.Post) int {
	return Explain(subject, candidate).Total()
}

// Explain раскладывает оценку по компонентам.
func Explain(subject, candidate models.Post) Breakdown {
	b := Breakdown{
		Interests: interestOverlap(subject.Interests, candidate.Interests) * InterestWeight,
		Audience:  compatibility(float64(subject.Followers), float64(candidate.Followers)) * AudienceWeight,
	}
	if subject.Role != candidate.Role {
		b.Price = compatibility(subject.PricePoint, candidate.PricePoint) * PriceWeight
	}
	if strings.EqualFold(string(subject.Platform), string(candidate.Platform)) {
		b.Platform = PlatformWeight
	}
	return b
}

// interestOverlap возвращает долю интересов subject, для которых у candidate
// есть тег, содержащий его или содержащийся в нём (без учёта регистра).
func interestOverlap(subject, candidate []string) float64 {
	a := normalize(subject)
	b := normalize(candidate)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	matched := 0
	for _, s := range a {
		for _, c := range b {
			if strings.Contains(s, c) || strings.Contains(c, s) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(max(len(a), len(b)))
}

// compatibility считает 1 - |a-b|/max(a,b), не меньше нуля. Два нуля считаются
// полностью совместимыми.
func compatibility(a, b float64) float64 {
	hi := math.Max(a, b)
	if hi <= 0 {
		return 1
	}
	return math.Max(0, 1-math.Abs(a-b)/hi)
}

// normalize приводит теги к нижнему регистру и отбрасывает пустые:
// пустая строка содержится в любой другой и дала бы ложное совпадение.
func normalize(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
