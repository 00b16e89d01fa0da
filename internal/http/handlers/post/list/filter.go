package list

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// parseFilter собирает фильтр ленты из параметров запроса.
// Отсутствующий параметр не фильтрует.
func parseFilter(q url.Values) (models.PostFilter, error) {
	var f models.PostFilter

	if v := strings.TrimSpace(q.Get("user_type")); v != "" {
		role, err := models.ParseRole(v)
		if err != nil {
			return f, err
		}
		f.Role = role
	}
	if v := strings.TrimSpace(q.Get("platform")); v != "" {
		p, err := models.ParsePlatform(v)
		if err != nil {
			return f, err
		}
		f.Platform = p
	}

	var err error
	if f.MinFollowers, err = optionalInt(q, "min_followers"); err != nil {
		return f, err
	}
	if f.MaxFollowers, err = optionalInt(q, "max_followers"); err != nil {
		return f, err
	}
	if f.MinPrice, err = optionalFloat(q, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = optionalFloat(q, "max_price"); err != nil {
		return f, err
	}
	f.Interest = strings.TrimSpace(q.Get("interests"))

	if v := q.Get("limit"); v != "" {
		if f.Limit, err = strconv.Atoi(v); err != nil {
			return f, fmt.Errorf("limit must be an integer")
		}
	}
	if v := q.Get("offset"); v != "" {
		if f.Offset, err = strconv.Atoi(v); err != nil {
			return f, fmt.Errorf("offset must be an integer")
		}
	}
	return f, nil
}

func optionalInt(q url.Values, key string) (*int64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return &n, nil
}

func optionalFloat(q url.Values, key string) (*float64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return nil, fmt.Errorf("%s must be a non-negative number", key)
	}
	return &n, nil
}
