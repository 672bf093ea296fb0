package storefront

import (
	"context"
	"errors"
	"sync"
)

// ErrStaleFetch is returned by Open when a later Open started before this
// one finished; its result was dropped.
var ErrStaleFetch = errors.New("superseded by a newer fetch")

type CatalogLoader interface {
	Load(ctx context.Context, subdomain string) (Catalog, error)
}

// Session owns the catalog a single shopper is browsing. Only the most
// recently started Open may replace it.
type Session struct {
	Loader CatalogLoader

	mu      sync.RWMutex
	latest  uint64
	current *Catalog
	err     error
}

func (s *Session) Open(ctx context.Context, subdomain string) (Catalog, error) {
	s.mu.Lock()
	s.latest++
	gen := s.latest
	s.mu.Unlock()

	cat, err := s.Loader.Load(ctx, subdomain)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.latest {
		return Catalog{}, ErrStaleFetch
	}
	if err != nil {
		s.current, s.err = nil, err
		return Catalog{}, err
	}
	s.current, s.err = &cat, nil
	return cat, nil
}

// Current returns the catalog of the last completed Open, or the error it failed with.
func (s *Session) Current() (Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		if s.err != nil {
			return Catalog{}, s.err
		}
		return Catalog{}, ErrNoSubdomain
	}
	return *s.current, nil
}
