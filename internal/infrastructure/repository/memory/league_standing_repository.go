package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/leaguestanding"
)

type LeagueStandingRepository struct {
	mu     sync.RWMutex
	tables map[string][]leaguestanding.Standing
}

func NewLeagueStandingRepository() *LeagueStandingRepository {
	return &LeagueStandingRepository{tables: make(map[string][]leaguestanding.Standing)}
}

func (r *LeagueStandingRepository) ListBySeason(_ context.Context, leagueID, season string) ([]leaguestanding.Standing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.tables[seasonKey(leagueID, season)]
	out := make([]leaguestanding.Standing, 0, len(items))
	out = append(out, items...)
	return out, nil
}

func (r *LeagueStandingRepository) ReplaceBySeason(_ context.Context, leagueID, season string, standings []leaguestanding.Standing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]leaguestanding.Standing, 0, len(standings))
	items = append(items, standings...)
	r.tables[seasonKey(leagueID, season)] = items
	return nil
}
