package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/playerstats"
)

type PlayerStatsRepository struct {
	mu     sync.RWMutex
	rows   map[string]map[string]playerstats.PlayerSeasonStats
	ledger map[string]map[string]struct{}
}

func NewPlayerStatsRepository() *PlayerStatsRepository {
	return &PlayerStatsRepository{
		rows:   make(map[string]map[string]playerstats.PlayerSeasonStats),
		ledger: make(map[string]map[string]struct{}),
	}
}

func seasonKey(leagueID, season string) string {
	return leagueID + "|" + season
}

func (r *PlayerStatsRepository) ListBySeason(_ context.Context, leagueID, season string) ([]playerstats.PlayerSeasonStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.rows[seasonKey(leagueID, season)]
	out := make([]playerstats.PlayerSeasonStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// SearchByName matches case-insensitive substrings of the player name,
// ordered by goals descending.
func (r *PlayerStatsRepository) SearchByName(_ context.Context, leagueID, season, query string, limit int) ([]playerstats.PlayerSeasonStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]playerstats.PlayerSeasonStats, 0)
	for _, row := range r.rows[seasonKey(leagueID, season)] {
		if strings.Contains(strings.ToLower(row.PlayerName), needle) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Goals != out[j].Goals {
			return out[i].Goals > out[j].Goals
		}
		return out[i].PlayerName < out[j].PlayerName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PlayerStatsRepository) ListLedgerKeys(_ context.Context, leagueID, season string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := r.ledger[seasonKey(leagueID, season)]
	out := make([]string, 0, len(keys))
	for key := range keys {
		out = append(out, key)
	}
	sort.Strings(out)
	return out, nil
}

func (r *PlayerStatsRepository) ApplyFold(_ context.Context, leagueID, season string, deltas []playerstats.PlayerSeasonStats, ledgerKeys []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sk := seasonKey(leagueID, season)
	applied := r.ledger[sk]
	for _, key := range ledgerKeys {
		if _, ok := applied[key]; ok {
			return playerstats.ErrLedgerConflict
		}
	}

	if applied == nil {
		applied = make(map[string]struct{}, len(ledgerKeys))
		r.ledger[sk] = applied
	}
	rows := r.rows[sk]
	if rows == nil {
		rows = make(map[string]playerstats.PlayerSeasonStats, len(deltas))
		r.rows[sk] = rows
	}

	for _, delta := range deltas {
		row, ok := rows[delta.Key]
		if !ok {
			row = playerstats.PlayerSeasonStats{Key: delta.Key, LeagueID: leagueID, Season: season}
		}
		if delta.PlayerID > 0 {
			row.PlayerID = delta.PlayerID
		}
		if delta.PlayerName != "" {
			row.PlayerName = delta.PlayerName
		}
		if delta.TeamName != "" {
			row.TeamName = delta.TeamName
		}
		row.Goals += delta.Goals
		row.Assists += delta.Assists
		row.Appearances += delta.Appearances
		row.YellowCards += delta.YellowCards
		row.RedCards += delta.RedCards
		row.LowConfidence = delta.LowConfidence
		rows[delta.Key] = row
	}
	for _, key := range ledgerKeys {
		applied[key] = struct{}{}
	}
	return nil
}
