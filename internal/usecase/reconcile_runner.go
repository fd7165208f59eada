package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/match"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/matchevent"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// MatchResolver links a local match to the event source.
type MatchResolver interface {
	ResolveAndStore(ctx context.Context, item match.Match) (Resolution, error)
}

// MatchEventSource returns the ordered events of one external match.
type MatchEventSource interface {
	Fetch(ctx context.Context, externalMatchID string) ([]matchevent.MatchEvent, error)
}

type RunOptions struct {
	Resolve   bool
	Aggregate bool
}

type RunSummary struct {
	LeagueID            string
	Season              string
	Matches             int
	Linked              int
	Resolved            int
	Unresolved          int
	Ambiguous           int
	Fetched             int
	RemoteFailures      int
	Failed              int
	Folded              int
	SkippedEvents       int
	SuspectedDuplicates int
	Duration            time.Duration
}

// ReconcileRunner drives resolve, fetch and fold over every match of a
// season, one match at a time. Per-match failures are logged and counted;
// only loading the season aborts a run.
type ReconcileRunner struct {
	matches     match.Repository
	resolver    MatchResolver
	fetcher     MatchEventSource
	aggregation *AggregationService
	metrics     RunMetrics
	logger      *logging.Logger
}

func NewReconcileRunner(
	matches match.Repository,
	resolver MatchResolver,
	fetcher MatchEventSource,
	aggregation *AggregationService,
	metrics RunMetrics,
	logger *logging.Logger,
) *ReconcileRunner {
	if logger == nil {
		logger = logging.Default()
	}
	if metrics == nil {
		metrics = nopRunMetrics{}
	}
	return &ReconcileRunner{
		matches:     matches,
		resolver:    resolver,
		fetcher:     fetcher,
		aggregation: aggregation,
		metrics:     metrics,
		logger:      logger,
	}
}

func (r *ReconcileRunner) Run(ctx context.Context, leagueID, season string, opts RunOptions) (RunSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileRunner.Run",
		attribute.String("league.id", leagueID),
		attribute.String("season", season),
	)
	defer span.End()

	started := time.Now()
	leagueID = strings.TrimSpace(leagueID)
	season = strings.TrimSpace(season)
	summary := RunSummary{LeagueID: leagueID, Season: season}

	items, err := r.matches.ListBySeason(ctx, leagueID, season)
	if err != nil {
		return summary, fmt.Errorf("list matches league=%s season=%s: %w", leagueID, season, err)
	}
	summary.Matches = len(items)

	var seasonAgg *SeasonAggregation
	if opts.Aggregate {
		seasonAgg, err = r.aggregation.Open(ctx, leagueID, season)
		if err != nil {
			return summary, err
		}
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(started)
			return summary, err
		}
		matchStarted := time.Now()
		r.runMatch(ctx, item, opts, seasonAgg, &summary)
		r.metrics.ObserveMatchDuration(time.Since(matchStarted))
	}

	// Linked covers matches resolved by earlier runs too; a count failure
	// only costs the coverage line.
	if linked, err := r.matches.CountBySeason(ctx, leagueID, season, true); err != nil {
		r.logger.WarnContext(ctx, "count linked matches failed", "league_id", leagueID, "season", season, "error", err)
	} else {
		summary.Linked = linked
	}

	summary.Duration = time.Since(started)
	r.logger.InfoContext(ctx, "reconciliation run finished",
		"league_id", leagueID,
		"season", season,
		"matches", summary.Matches,
		"linked", summary.Linked,
		"resolved", summary.Resolved,
		"unresolved", summary.Unresolved,
		"ambiguous", summary.Ambiguous,
		"fetched", summary.Fetched,
		"remote_failures", summary.RemoteFailures,
		"failed", summary.Failed,
		"folded", summary.Folded,
		"skipped_events", summary.SkippedEvents,
		"suspected_duplicates", summary.SuspectedDuplicates,
		"duration", summary.Duration,
	)
	return summary, nil
}

func (r *ReconcileRunner) runMatch(ctx context.Context, item match.Match, opts RunOptions, seasonAgg *SeasonAggregation, summary *RunSummary) {
	if !item.IsResolved() {
		if !opts.Resolve {
			summary.Unresolved++
			return
		}
		res, err := r.resolver.ResolveAndStore(ctx, item)
		switch {
		case errors.Is(err, ErrAmbiguousIdentity):
			summary.Ambiguous++
			r.metrics.ObserveResolution(ResolutionAmbiguous)
			r.logger.WarnContext(ctx, "ambiguous match identity",
				"match_id", item.ID,
				"candidates", res.Candidates,
				"error", err,
			)
			return
		case err != nil:
			r.countFailure(ctx, "resolve", item, err, summary)
			return
		}

		r.metrics.ObserveResolution(res.Status)
		if res.Status != ResolutionResolved {
			summary.Unresolved++
			r.logger.InfoContext(ctx, "match unresolved",
				"match_id", item.ID,
				"home_team", item.HomeTeamName,
				"away_team", item.AwayTeamName,
				"date", item.Date.Format(time.DateOnly),
			)
			return
		}
		item.ExternalMatchID = res.ExternalMatchID
	}
	summary.Resolved++

	if !opts.Aggregate || seasonAgg == nil || !item.IsFinished() {
		return
	}

	events, err := r.fetcher.Fetch(ctx, item.ExternalMatchID)
	if err != nil {
		r.countFailure(ctx, "fetch_events", item, err, summary)
		return
	}
	summary.Fetched++

	res, err := seasonAgg.Fold(ctx, item.ID, events)
	summary.SuspectedDuplicates += len(res.SuspectedDuplicates)
	if err != nil {
		r.countFailure(ctx, "fold", item, err, summary)
		return
	}
	summary.Folded += res.Applied
	summary.SkippedEvents += res.Skipped
	r.metrics.AddFoldedEvents(res.Applied, res.Skipped)
}

func (r *ReconcileRunner) countFailure(ctx context.Context, operation string, item match.Match, err error, summary *RunSummary) {
	if errors.Is(err, ErrRemoteUnavailable) {
		summary.RemoteFailures++
		r.metrics.IncRemoteFailure(operation)
	} else {
		summary.Failed++
	}
	r.logger.WarnContext(ctx, "match skipped",
		"operation", operation,
		"match_id", item.ID,
		"external_match_id", item.ExternalMatchID,
		"error", err,
	)
}
