package leaguestanding

import "context"

// Repository keeps the latest fetched table per league season so sanity
// checks can be audited later.
type Repository interface {
	ListBySeason(ctx context.Context, leagueID, season string) ([]Standing, error)
	ReplaceBySeason(ctx context.Context, leagueID, season string, standings []Standing) error
}
