package match

import "context"

// Repository persists schedule matches.
type Repository interface {
	ListBySeason(ctx context.Context, leagueID, season string) ([]Match, error)
	CountBySeason(ctx context.Context, leagueID, season string, resolvedOnly bool) (int, error)
	UpsertMatches(ctx context.Context, items []Match) error
	SetExternalMatchID(ctx context.Context, matchID, externalMatchID string) error
}
