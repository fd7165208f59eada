package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/match"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
)

type SeedResult struct {
	LeagueID string
	Season   string
	Fetched  int
	Upserted int
	Skipped  int
}

// ScheduleSeeder copies the schedule source's season fixtures into the match
// store. Upserts never clear an already resolved external id.
type ScheduleSeeder struct {
	provider ScheduleProvider
	matches  match.Repository
	location *time.Location
	logger   *logging.Logger
}

// NewScheduleSeeder stores match dates as calendar days in location.
func NewScheduleSeeder(provider ScheduleProvider, matches match.Repository, location *time.Location, logger *logging.Logger) *ScheduleSeeder {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}
	return &ScheduleSeeder{provider: provider, matches: matches, location: location, logger: logger}
}

func (s *ScheduleSeeder) Seed(ctx context.Context, leagueID, season string) (SeedResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleSeeder.Seed")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	season = strings.TrimSpace(season)
	result := SeedResult{LeagueID: leagueID, Season: season}
	if leagueID == "" || season == "" {
		return result, fmt.Errorf("%w: league id and season are required", ErrInvalidInput)
	}

	items, err := s.provider.FetchSeasonSchedule(ctx, leagueID, season)
	if err != nil {
		return result, fmt.Errorf("fetch season schedule league=%s season=%s: %w", leagueID, season, err)
	}
	result.Fetched = len(items)

	matches := make([]match.Match, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		mapped, ok := mapScheduleMatch(leagueID, season, item, s.location)
		if !ok {
			result.Skipped++
			s.logger.WarnContext(ctx, "skip incomplete schedule row",
				"league_id", leagueID,
				"source_event_id", item.SourceEventID,
				"home_team", item.HomeTeamName,
				"away_team", item.AwayTeamName,
			)
			continue
		}
		if _, dup := seen[mapped.ID]; dup {
			result.Skipped++
			continue
		}
		seen[mapped.ID] = struct{}{}
		matches = append(matches, mapped)
	}

	if len(matches) > 0 {
		if err := s.matches.UpsertMatches(ctx, matches); err != nil {
			return result, fmt.Errorf("upsert matches league=%s season=%s: %w", leagueID, season, err)
		}
	}
	result.Upserted = len(matches)

	s.logger.InfoContext(ctx, "season schedule seeded",
		"league_id", leagueID,
		"season", season,
		"fetched", result.Fetched,
		"upserted", result.Upserted,
		"skipped", result.Skipped,
	)
	return result, nil
}

func mapScheduleMatch(leagueID, season string, item ExternalScheduleMatch, loc *time.Location) (match.Match, bool) {
	sourceID := strings.TrimSpace(item.SourceEventID)
	home := strings.TrimSpace(item.HomeTeamName)
	away := strings.TrimSpace(item.AwayTeamName)
	if sourceID == "" || home == "" || away == "" || item.Date.IsZero() {
		return match.Match{}, false
	}

	return match.Match{
		ID:            match.PublicID(leagueID, sourceID),
		LeagueID:      leagueID,
		Season:        season,
		Round:         item.Round,
		HomeTeamName:  home,
		AwayTeamName:  away,
		Date:          match.Day(item.Date, loc),
		Status:        match.NormalizeStatus(item.Status),
		HomeScore:     item.HomeScore,
		AwayScore:     item.AwayScore,
		SourceEventID: sourceID,
	}, true
}
