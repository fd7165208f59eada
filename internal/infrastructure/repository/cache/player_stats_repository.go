package cache

import (
	"context"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/playerstats"
	basecache "github.com/riskibarqy/kleague-reconciler/internal/platform/cache"
)

// PlayerStatsRepository caches season totals between the aggregate, report
// and standings steps of one run. ApplyFold drops the season entry.
type PlayerStatsRepository struct {
	next  playerstats.Repository
	cache *basecache.Store[[]playerstats.PlayerSeasonStats]
}

func NewPlayerStatsRepository(next playerstats.Repository, cache *basecache.Store[[]playerstats.PlayerSeasonStats]) *PlayerStatsRepository {
	return &PlayerStatsRepository{next: next, cache: cache}
}

func (r *PlayerStatsRepository) ListBySeason(ctx context.Context, leagueID, season string) ([]playerstats.PlayerSeasonStats, error) {
	items, err := r.cache.GetOrLoad(ctx, seasonKey(leagueID, season), func(ctx context.Context) ([]playerstats.PlayerSeasonStats, error) {
		items, err := r.next.ListBySeason(ctx, leagueID, season)
		if err != nil {
			return nil, err
		}
		return append([]playerstats.PlayerSeasonStats(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]playerstats.PlayerSeasonStats(nil), items...), nil
}

func (r *PlayerStatsRepository) SearchByName(ctx context.Context, leagueID, season, query string, limit int) ([]playerstats.PlayerSeasonStats, error) {
	return r.next.SearchByName(ctx, leagueID, season, query, limit)
}

func (r *PlayerStatsRepository) ListLedgerKeys(ctx context.Context, leagueID, season string) ([]string, error) {
	return r.next.ListLedgerKeys(ctx, leagueID, season)
}

func (r *PlayerStatsRepository) ApplyFold(ctx context.Context, leagueID, season string, deltas []playerstats.PlayerSeasonStats, ledgerKeys []string) error {
	err := r.next.ApplyFold(ctx, leagueID, season, deltas, ledgerKeys)
	// A rejected fold may still mean the store moved on under us.
	r.cache.Delete(ctx, seasonKey(leagueID, season))
	return err
}

func seasonKey(leagueID, season string) string {
	return "player_stats:season:" + leagueID + ":" + season
}
