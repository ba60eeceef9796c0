package service

import (
	"context"
	"fmt"
	"log"

	"github.com/arenhart/tradepost/internal/cache"
	"github.com/arenhart/tradepost/internal/match"
	"github.com/arenhart/tradepost/internal/roster"
	"github.com/arenhart/tradepost/internal/store"
	"github.com/arenhart/tradepost/internal/store/repository"
)

// TradeService answers roster and matching queries against the current
// snapshot. Reads go cache → database → file; every miss falls through
// to the next layer, and a total miss is an empty roster, never a crash.
type TradeService struct {
	snapshotRepo *repository.SnapshotRepository
	cache        *cache.RedisCache
	snapshotPath string
}

// NewTradeService creates a trade service. db and redisCache may be nil
// (file-only deployments); the file path is always required.
func NewTradeService(db *store.Database, redisCache *cache.RedisCache, snapshotPath string) *TradeService {
	svc := &TradeService{
		cache:        redisCache,
		snapshotPath: snapshotPath,
	}
	if db != nil {
		svc.snapshotRepo = repository.NewSnapshotRepository(db)
	}
	return svc
}

// CurrentSnapshot returns the freshest available snapshot.
func (s *TradeService) CurrentSnapshot(ctx context.Context) roster.Snapshot {
	if s.cache != nil {
		snap, hit, err := s.cache.GetSnapshot(ctx)
		if err != nil {
			log.Printf("⚠️  Snapshot cache read failed: %v", err)
		} else if hit {
			return snap
		}
	}

	if s.snapshotRepo != nil {
		snap, err := s.snapshotRepo.Load(ctx)
		if err != nil {
			log.Printf("⚠️  Snapshot database read failed: %v", err)
		} else if len(snap.Players) > 0 {
			if s.cache != nil {
				if err := s.cache.SetSnapshot(ctx, snap); err != nil {
					log.Printf("⚠️  Snapshot cache refill failed: %v", err)
				}
			}
			return snap
		}
	}

	return roster.LoadFile(s.snapshotPath)
}

// StoreSnapshot persists a freshly built snapshot to every layer. The
// file write is the one that matters for the snapshot contract; cache
// and database failures are reported but do not fail the run.
func (s *TradeService) StoreSnapshot(ctx context.Context, snap roster.Snapshot) error {
	if err := roster.SaveFile(s.snapshotPath, snap); err != nil {
		return fmt.Errorf("saving snapshot file: %w", err)
	}

	if s.snapshotRepo != nil {
		if err := s.snapshotRepo.Save(ctx, snap); err != nil {
			log.Printf("⚠️  Snapshot database save failed: %v", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, snap); err != nil {
			log.Printf("⚠️  Snapshot cache save failed: %v", err)
		}
	}

	return nil
}

// Players returns the roster entries of the current snapshot.
func (s *TradeService) Players(ctx context.Context) []roster.PlayerRoster {
	return s.CurrentSnapshot(ctx).Players
}

// Player returns one roster entry by name.
func (s *TradeService) Player(ctx context.Context, name string) (roster.PlayerRoster, bool) {
	return s.CurrentSnapshot(ctx).FindPlayer(name)
}

// Matches computes all trade opportunities over the current snapshot.
func (s *TradeService) Matches(ctx context.Context) []match.Opportunity {
	return match.NewMatcher(s.CurrentSnapshot(ctx)).Opportunities()
}

// MatchesFor computes opportunities where the named player gives.
func (s *TradeService) MatchesFor(ctx context.Context, name string) []match.Opportunity {
	return match.NewMatcher(s.CurrentSnapshot(ctx)).OpportunitiesFor(name)
}

// Search runs the free-text have-list search.
func (s *TradeService) Search(ctx context.Context, query string) []match.SearchResult {
	return match.NewMatcher(s.CurrentSnapshot(ctx)).Search(query)
}
