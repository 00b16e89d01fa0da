package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

func TestBuildListQuery(t *testing.T) {
	minFollowers := int64(1000)
	maxPrice := 250.0

	tests := []struct {
		name      string
		filter    models.PostFilter
		wantWhere string
		wantTail  string
		wantArgs  []any
	}{
		{
			name:     "no filters",
			filter:   models.PostFilter{},
			wantTail: " FROM posts ORDER BY created_at DESC, id DESC",
			wantArgs: nil,
		},
		{
			name: "role platform and ranges",
			filter: models.PostFilter{
				Role:         models.RoleSponsor,
				Platform:     models.PlatformTwitch,
				MinFollowers: &minFollowers,
				MaxPrice:     &maxPrice,
			},
			wantWhere: " WHERE user_type = $1 AND platform = $2 AND followers >= $3 AND price_point <= $4",
			wantArgs:  []any{models.RoleSponsor, models.PlatformTwitch, int64(1000), 250.0},
		},
		{
			name:      "interest with paging",
			filter:    models.PostFilter{Interest: " tech ", Limit: 20, Offset: 40},
			wantWhere: ` WHERE EXISTS (SELECT 1 FROM unnest(interests) AS tag WHERE tag ILIKE '%' || $1 || '%' ESCAPE '\')`,
			wantTail:  " ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3",
			wantArgs:  []any{"tech", 20, 40},
		},
		{
			name:      "interest wildcards are literal",
			filter:    models.PostFilter{Interest: "100%_real"},
			wantWhere: ` ESCAPE '\')`,
			wantArgs:  []any{`100\%\_real`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.filter)
			if tt.wantWhere != "" {
				assert.Contains(t, query, tt.wantWhere)
			} else {
				assert.NotContains(t, query, "WHERE")
			}
			if tt.wantTail != "" {
				assert.Contains(t, query, tt.wantTail)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "tech", want: "tech"},
		{in: "%", want: `\%`},
		{in: "a_b", want: `a\_b`},
		{in: `c:\path`, want: `c:\\path`},
		{in: `50%_\`, want: `50\%\_\\`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLike(tt.in))
		})
	}
}
