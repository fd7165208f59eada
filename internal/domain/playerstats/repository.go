package playerstats

import (
	"context"
	"errors"
)

// ErrLedgerConflict means at least one ledger key of a fold was already
// stored; the whole fold is rejected.
var ErrLedgerConflict = errors.New("aggregation ledger key already applied")

// Repository persists season totals together with the aggregation ledger.
type Repository interface {
	ListBySeason(ctx context.Context, leagueID, season string) ([]PlayerSeasonStats, error)
	SearchByName(ctx context.Context, leagueID, season, query string, limit int) ([]PlayerSeasonStats, error)
	ListLedgerKeys(ctx context.Context, leagueID, season string) ([]string, error)
	// ApplyFold adds deltas to the stored totals and records ledgerKeys in a
	// single transaction.
	ApplyFold(ctx context.Context, leagueID, season string, deltas []PlayerSeasonStats, ledgerKeys []string) error
}
