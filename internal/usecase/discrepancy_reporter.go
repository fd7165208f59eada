package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/discrepancy"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/playerstats"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/namematch"
)

const maxPlayerSearchResults = 50

// DiscrepancyReporter compares computed season totals with reference values.
// Differences are reported, never corrected.
type DiscrepancyReporter struct {
	stats     playerstats.Repository
	matcher   *namematch.Matcher
	tolerance int
	logger    *logging.Logger
}

func NewDiscrepancyReporter(stats playerstats.Repository, matcher *namematch.Matcher, tolerance int, logger *logging.Logger) *DiscrepancyReporter {
	if logger == nil {
		logger = logging.Default()
	}
	if tolerance < 0 {
		tolerance = 0
	}
	return &DiscrepancyReporter{stats: stats, matcher: matcher, tolerance: tolerance, logger: logger}
}

func (r *DiscrepancyReporter) Tolerance() int {
	return r.tolerance
}

// Report emits one record per reference entry.
func (r *DiscrepancyReporter) Report(ctx context.Context, leagueID, season string, refs []discrepancy.ReferenceEntry) ([]discrepancy.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DiscrepancyReporter.Report")
	defer span.End()

	rows, err := r.stats.ListBySeason(ctx, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("load season stats league=%s season=%s: %w", leagueID, season, err)
	}

	records := BuildDiscrepancies(rows, refs, r.matcher)
	for _, record := range records {
		if !record.Exceeds(r.tolerance) {
			continue
		}
		r.logger.WarnContext(ctx, "reference value differs from computed value",
			"player", record.PlayerName,
			"team", record.TeamName,
			"metric", string(record.Metric),
			"reference", record.ReferenceValue,
			"computed", record.ComputedValue,
			"delta", record.Delta,
			"matched", record.Matched,
			"error", ErrDataInconsistency,
		)
	}
	return records, nil
}

// FindPlayers lists computed rows whose player name contains query.
func (r *DiscrepancyReporter) FindPlayers(ctx context.Context, leagueID, season, query string) ([]playerstats.PlayerSeasonStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DiscrepancyReporter.FindPlayers")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: player name query is required", ErrInvalidInput)
	}

	items, err := r.stats.SearchByName(ctx, leagueID, season, query, maxPlayerSearchResults)
	if err != nil {
		return nil, fmt.Errorf("search players league=%s season=%s: %w", leagueID, season, err)
	}
	return items, nil
}

// BuildDiscrepancies looks up each reference entry by player id when it has
// one, otherwise by normalized name. Several rows sharing a name are narrowed
// by team; if that still leaves more than one, the highest value is used and
// the record is flagged low confidence. A missing row computes as zero.
func BuildDiscrepancies(rows []playerstats.PlayerSeasonStats, refs []discrepancy.ReferenceEntry, matcher *namematch.Matcher) []discrepancy.Record {
	byID := make(map[int64]playerstats.PlayerSeasonStats, len(rows))
	byName := make(map[string][]playerstats.PlayerSeasonStats, len(rows))
	for _, row := range rows {
		if row.PlayerID > 0 {
			byID[row.PlayerID] = row
		}
		if name := namematch.Normalize(row.PlayerName); name != "" {
			byName[name] = append(byName[name], row)
		}
	}

	records := make([]discrepancy.Record, 0, len(refs))
	for _, ref := range refs {
		metric := string(ref.Metric)

		if ref.PlayerID > 0 {
			if row, ok := byID[ref.PlayerID]; ok {
				records = append(records, discrepancy.NewRecord(ref, row.Value(metric), true, row.LowConfidence))
				continue
			}
		}

		candidates := byName[namematch.Normalize(ref.PlayerName)]
		if len(candidates) > 1 && strings.TrimSpace(ref.TeamName) != "" {
			candidates = filterByTeam(candidates, ref.TeamName, matcher)
		}

		switch len(candidates) {
		case 0:
			records = append(records, discrepancy.NewRecord(ref, 0, false, false))
		case 1:
			row := candidates[0]
			records = append(records, discrepancy.NewRecord(ref, row.Value(metric), true, row.LowConfidence))
		default:
			best := candidates[0]
			for _, row := range candidates[1:] {
				if row.Value(metric) > best.Value(metric) {
					best = row
				}
			}
			records = append(records, discrepancy.NewRecord(ref, best.Value(metric), true, true))
		}
	}
	return records
}

func filterByTeam(rows []playerstats.PlayerSeasonStats, team string, matcher *namematch.Matcher) []playerstats.PlayerSeasonStats {
	out := make([]playerstats.PlayerSeasonStats, 0, len(rows))
	for _, row := range rows {
		if matcher.Compare(team, row.TeamName).Match {
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		return rows
	}
	return out
}
