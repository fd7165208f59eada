package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]match.Match
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	items := make(map[string]match.Match, len(matches))
	for _, item := range matches {
		items[item.ID] = item
	}
	return &MatchRepository{items: items}
}

// ListBySeason returns matches ordered by date, then id.
func (r *MatchRepository) ListBySeason(_ context.Context, leagueID, season string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.Season == season {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MatchRepository) CountBySeason(_ context.Context, leagueID, season string, resolvedOnly bool) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, item := range r.items {
		if item.LeagueID != leagueID || item.Season != season {
			continue
		}
		if resolvedOnly && !item.IsResolved() {
			continue
		}
		count++
	}
	return count, nil
}

// UpsertMatches replaces stored matches by id but keeps a resolved external
// id when the incoming row has none.
func (r *MatchRepository) UpsertMatches(_ context.Context, items []match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if existing, ok := r.items[item.ID]; ok && strings.TrimSpace(item.ExternalMatchID) == "" {
			item.ExternalMatchID = existing.ExternalMatchID
		}
		r.items[item.ID] = item
	}
	return nil
}

func (r *MatchRepository) SetExternalMatchID(_ context.Context, matchID, externalMatchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[matchID]
	if !ok {
		return fmt.Errorf("match not found: %s", matchID)
	}
	item.ExternalMatchID = externalMatchID
	r.items[matchID] = item
	return nil
}
