package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/leaguestanding"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/playerstats"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/namematch"
)

// TeamGoalDelta compares one club's goals-for with the goals credited to its
// players. Own goals make small positive deltas normal.
type TeamGoalDelta struct {
	TeamName    string
	GoalsFor    int
	PlayerGoals int
	Delta       int
}

type SanityReport struct {
	LeagueID       string
	Season         string
	StandingsGoals int
	PlayerGoals    int
	Delta          int
	Tolerance      int
	Consistent     bool
	Teams          []TeamGoalDelta
}

// StandingsSanityCheck compares season goal totals with the published
// standings. An inconsistency is reported, never fatal.
type StandingsSanityCheck struct {
	provider  ScheduleProvider
	stats     playerstats.Repository
	standings leaguestanding.Repository
	matcher   *namematch.Matcher
	tolerance int
	logger    *logging.Logger
}

func NewStandingsSanityCheck(
	provider ScheduleProvider,
	stats playerstats.Repository,
	standings leaguestanding.Repository,
	matcher *namematch.Matcher,
	tolerance int,
	logger *logging.Logger,
) *StandingsSanityCheck {
	if logger == nil {
		logger = logging.Default()
	}
	if tolerance < 0 {
		tolerance = 0
	}
	return &StandingsSanityCheck{
		provider:  provider,
		stats:     stats,
		standings: standings,
		matcher:   matcher,
		tolerance: tolerance,
		logger:    logger,
	}
}

func (c *StandingsSanityCheck) Check(ctx context.Context, leagueID, season string) (SanityReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsSanityCheck.Check")
	defer span.End()

	report := SanityReport{LeagueID: leagueID, Season: season, Tolerance: c.tolerance}

	external, err := c.provider.FetchStandings(ctx, leagueID, season)
	if err != nil {
		return report, fmt.Errorf("fetch standings league=%s season=%s: %w", leagueID, season, err)
	}
	table := make([]leaguestanding.Standing, 0, len(external))
	for _, item := range external {
		if strings.TrimSpace(item.TeamName) == "" {
			continue
		}
		table = append(table, leaguestanding.Standing{
			LeagueID:     leagueID,
			Season:       season,
			TeamName:     strings.TrimSpace(item.TeamName),
			Rank:         item.Rank,
			Played:       item.Played,
			Won:          item.Won,
			Draw:         item.Draw,
			Lost:         item.Lost,
			GoalsFor:     item.GoalsFor,
			GoalsAgainst: item.GoalsAgainst,
			Points:       item.Points,
		})
	}
	if err := c.standings.ReplaceBySeason(ctx, leagueID, season, table); err != nil {
		return report, fmt.Errorf("store standings league=%s season=%s: %w", leagueID, season, err)
	}

	rows, err := c.stats.ListBySeason(ctx, leagueID, season)
	if err != nil {
		return report, fmt.Errorf("load season stats league=%s season=%s: %w", leagueID, season, err)
	}

	report = CompareStandings(leagueID, season, table, rows, c.matcher, c.tolerance)
	if !report.Consistent {
		c.logger.WarnContext(ctx, "standings goals differ from player goals",
			"league_id", leagueID,
			"season", season,
			"standings_goals", report.StandingsGoals,
			"player_goals", report.PlayerGoals,
			"delta", report.Delta,
			"tolerance", report.Tolerance,
			"error", ErrDataInconsistency,
		)
	}
	return report, nil
}

// CompareStandings sums goals on both sides and breaks them down per club.
// Player rows are assigned to the standings club their team name matches.
func CompareStandings(leagueID, season string, table []leaguestanding.Standing, rows []playerstats.PlayerSeasonStats, matcher *namematch.Matcher, tolerance int) SanityReport {
	report := SanityReport{
		LeagueID:       leagueID,
		Season:         season,
		Tolerance:      tolerance,
		StandingsGoals: leaguestanding.TotalGoalsFor(table),
	}

	teams := make([]TeamGoalDelta, len(table))
	for i, standing := range table {
		teams[i] = TeamGoalDelta{TeamName: standing.TeamName, GoalsFor: standing.GoalsFor}
	}

	for _, row := range rows {
		report.PlayerGoals += row.Goals
		if row.Goals == 0 {
			continue
		}
		best, bestScore := -1, 0.0
		for i := range teams {
			res := matcher.Compare(row.TeamName, teams[i].TeamName)
			if res.Match && (best < 0 || res.Score > bestScore) {
				best, bestScore = i, res.Score
			}
		}
		if best >= 0 {
			teams[best].PlayerGoals += row.Goals
		}
	}

	for i := range teams {
		teams[i].Delta = teams[i].GoalsFor - teams[i].PlayerGoals
	}
	sort.SliceStable(teams, func(i, j int) bool {
		return strings.ToLower(teams[i].TeamName) < strings.ToLower(teams[j].TeamName)
	})

	report.Teams = teams
	report.Delta = report.StandingsGoals - report.PlayerGoals
	delta := report.Delta
	if delta < 0 {
		delta = -delta
	}
	report.Consistent = delta <= tolerance
	return report
}
