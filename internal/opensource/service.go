package opensource

import (
	"context"
	"strings"

	"techblog/internal/logging"
)

type Fetcher interface {
	Fetch(ctx context.Context, siteCommit string) (Status, error)
}

// Service answers status requests from the cache when possible. A nil cache
// disables caching.
type Service struct {
	fetcher Fetcher
	cache   *Cache
	log     logging.Logger
}

func NewService(fetcher Fetcher, cache *Cache, logger logging.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		log:     logging.OrNoOp(logger),
	}
}

func (s *Service) Status(ctx context.Context, siteCommit string) (Status, error) {
	siteCommit = strings.TrimSpace(siteCommit)
	if !LikelySHA(siteCommit) {
		siteCommit = ""
	}

	if s.cache != nil {
		st, ok, err := s.cache.Get(siteCommit)
		if err != nil {
			s.log.Warn("opensource: cache read failed", "error", err)
		}
		if ok {
			return st, nil
		}
	}

	st, err := s.fetcher.Fetch(ctx, siteCommit)
	if err != nil {
		s.log.Warn("opensource: fetch failed", "error", err)
		return Status{}, err
	}

	if s.cache != nil {
		if err := s.cache.Put(siteCommit, st); err != nil {
			s.log.Warn("opensource: cache write failed", "error", err)
		}
	}
	return st, nil
}
