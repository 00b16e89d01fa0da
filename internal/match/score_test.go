package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

func creator(interests []string, price float64, followers int64, platform models.Platform) models.Post {
	return models.Post{
		Role:       models.RoleCreator,
		Interests:  interests,
		PricePoint: price,
		Followers:  followers,
		Platform:   platform,
	}
}

func sponsor(interests []string, price float64, followers int64, platform models.Platform) models.Post {
	p := creator(interests, price, followers, platform)
	p.Role = models.RoleSponsor
	return p
}

func TestScore_TableTests(t *testing.T) {
	tests := []struct {
		name      string
		subject   models.Post
		candidate models.Post
		want      int
	}{
		{
			name:      "substring interest match",
			subject:   creator([]string{"gaming", "tech"}, 500, 50000, models.PlatformYouTube),
			candidate: sponsor([]string{"technology"}, 500, 50000, models.PlatformYouTube),
			want:      80,
		},
		{
			name:      "identical profiles",
			subject:   creator([]string{"gaming", "tech"}, 500, 50000, models.PlatformYouTube),
			candidate: sponsor([]string{"gaming", "tech"}, 500, 50000, models.PlatformYouTube),
			want:      100,
		},
		{
			name:      "case insensitive interests and platform",
			subject:   creator([]string{"Gaming"}, 100, 1000, "YouTube"),
			candidate: sponsor([]string{"GAMING"}, 100, 1000, models.PlatformYouTube),
			want:      100,
		},
		{
			name:      "disjoint interests, other platform, price doubled",
			subject:   creator([]string{"cooking"}, 1000, 10000, models.PlatformYouTube),
			candidate: sponsor([]string{"finance"}, 500, 10000, models.PlatformTikTok),
			// цена 0.5*35=17.5, аудитория 10
			want: 28,
		},
		{
			name:      "price far apart",
			subject:   creator(nil, 100, 0, models.PlatformTwitch),
			candidate: sponsor(nil, 10000, 0, models.PlatformInstagram),
			// цена 0.01*35=0.35, аудитория 0/0 считается совместимой
			want: 10,
		},
		{
			name:      "all zero",
			subject:   creator(nil, 0, 0, models.PlatformTwitter),
			candidate: sponsor(nil, 0, 0, models.PlatformLinkedIn),
			want:      45,
		},
		{
			name:      "empty tags are ignored",
			subject:   creator([]string{"", "  "}, 0, 0, models.PlatformTwitter),
			candidate: sponsor([]string{"music"}, 0, 0, models.PlatformLinkedIn),
			want:      45,
		},
		{
			name:      "audience half",
			subject:   creator([]string{"music"}, 200, 2000, models.PlatformTikTok),
			candidate: sponsor([]string{"music"}, 200, 1000, models.PlatformTikTok),
			want:      95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.subject, tt.candidate)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExplain_DisjointKeepsOnlyNumericTerms(t *testing.T) {
	a := creator([]string{"cooking", "travel"}, 900, 3000, models.PlatformYouTube)
	b := sponsor([]string{"finance"}, 300, 6000, models.PlatformTwitch)

	got := Explain(a, b)
	assert.Zero(t, got.Interests)
	assert.Zero(t, got.Platform)
	assert.InDelta(t, (1-600.0/900.0)*PriceWeight, got.Price, 1e-9)
	assert.InDelta(t, 0.5*AudienceWeight, got.Audience, 1e-9)
}

func TestExplain_NumericTermsSymmetric(t *testing.T) {
	a := creator([]string{"tech"}, 750, 12000, models.PlatformYouTube)
	b := sponsor([]string{"technology", "ai"}, 300, 40000, models.PlatformYouTube)

	ab := Explain(a, b)
	ba := Explain(b, a)
	assert.Equal(t, ab.Price, ba.Price)
	assert.Equal(t, ab.Audience, ba.Audience)
	assert.Equal(t, ab.Platform, ba.Platform)
}

func TestExplain_SameRoleHasNoPriceTerm(t *testing.T) {
	a := creator(nil, 100, 0, models.PlatformYouTube)
	b := creator(nil, 100, 0, models.PlatformYouTube)

	assert.Zero(t, Explain(a, b).Price)
}

func TestScore_Range(t *testing.T) {
	subjects := []models.Post{
		creator(nil, 0, 0, ""),
		creator([]string{"a", "b", "c"}, 1, 1, models.PlatformYouTube),
		creator([]string{"sport"}, 1e9, 1e9, models.PlatformTwitch),
	}
	candidates := []models.Post{
		sponsor([]string{"a"}, 1e9, 0, models.PlatformYouTube),
		sponsor([]string{"sports", "a", "b", "c"}, 1, 1e9, models.PlatformTwitch),
		sponsor(nil, 0, 0, ""),
	}
	for _, s := range subjects {
		for _, c := range candidates {
			got := Score(s, c)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		}
	}
}
