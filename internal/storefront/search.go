package storefront

import (
	"context"
	"strings"
	"unicode/utf8"
)

// MinSearchLen is the shortest term sent to the data service.
const MinSearchLen = 3

// SearchBusinesses skips the data service for blank or too-short terms.
func SearchBusinesses(ctx context.Context, s Searcher, term string) ([]BusinessResult, error) {
	if strings.TrimSpace(term) == "" || utf8.RuneCountInString(term) < MinSearchLen {
		return []BusinessResult{}, nil
	}
	res, err := s.SearchBusinesses(ctx, term)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []BusinessResult{}
	}
	return res, nil
}
