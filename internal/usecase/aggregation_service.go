package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/matchevent"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/playerstats"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
)

// AggregationService opens season aggregations backed by the stats store.
type AggregationService struct {
	repo   playerstats.Repository
	logger *logging.Logger
}

func NewAggregationService(repo playerstats.Repository, logger *logging.Logger) *AggregationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AggregationService{repo: repo, logger: logger}
}

// SeasonAggregation folds matches of one league season. It holds the season
// totals and the applied ledger in memory and persists each fold before the
// next one starts.
type SeasonAggregation struct {
	svc      *AggregationService
	leagueID string
	season   string
	agg      *playerstats.Aggregator
}

func (s *AggregationService) Open(ctx context.Context, leagueID, season string) (*SeasonAggregation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AggregationService.Open")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	season = strings.TrimSpace(season)
	if leagueID == "" || season == "" {
		return nil, fmt.Errorf("%w: league id and season are required", ErrInvalidInput)
	}

	agg, err := s.load(ctx, leagueID, season)
	if err != nil {
		return nil, err
	}
	return &SeasonAggregation{svc: s, leagueID: leagueID, season: season, agg: agg}, nil
}

func (s *AggregationService) load(ctx context.Context, leagueID, season string) (*playerstats.Aggregator, error) {
	rows, err := s.repo.ListBySeason(ctx, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("load season stats league=%s season=%s: %w", leagueID, season, err)
	}
	ledger, err := s.repo.ListLedgerKeys(ctx, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("load aggregation ledger league=%s season=%s: %w", leagueID, season, err)
	}
	return playerstats.NewAggregator(leagueID, season, rows, ledger), nil
}

// Fold applies the events of one match and persists the change. When the
// store rejects the fold the in-memory state is reloaded so it keeps
// mirroring what was stored.
func (a *SeasonAggregation) Fold(ctx context.Context, matchID string, events []matchevent.MatchEvent) (playerstats.FoldResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonAggregation.Fold")
	defer span.End()

	res := a.agg.Fold(matchID, events)
	for _, dup := range res.SuspectedDuplicates {
		a.svc.logger.WarnContext(ctx, "suspected duplicate match event",
			"match_id", matchID,
			"type", string(dup.Type),
			"minute", dup.Minute,
			"extra_minute", dup.ExtraMinute,
			"player", dup.ScoringPlayerName,
			"error", ErrDataInconsistency,
		)
	}
	if len(res.LedgerKeys) == 0 {
		return res, nil
	}

	if err := a.svc.repo.ApplyFold(ctx, a.leagueID, a.season, res.Deltas, res.LedgerKeys); err != nil {
		if errors.Is(err, playerstats.ErrLedgerConflict) {
			err = fmt.Errorf("%w: %w", ErrDataInconsistency, err)
		}
		err = fmt.Errorf("persist fold match=%s: %w", matchID, err)

		agg, reloadErr := a.svc.load(ctx, a.leagueID, a.season)
		if reloadErr != nil {
			return res, errors.Join(err, reloadErr)
		}
		a.agg = agg
		return res, err
	}
	return res, nil
}

// Snapshot returns the in-memory season totals.
func (a *SeasonAggregation) Snapshot() []playerstats.PlayerSeasonStats {
	return a.agg.Snapshot()
}
