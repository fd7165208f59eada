package usecase

import (
	"fmt"
	"io"
	"time"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/discrepancy"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/playerstats"
	"github.com/valyala/bytebufferpool"
)

const reportRule = "--------------------------------------------------------------------------------------------\n"

// RenderDiscrepancyReport writes a fixed-width pass/fail table followed by a
// summary line.
func RenderDiscrepancyReport(w io.Writer, leagueID, season string, records []discrepancy.Record, tolerance int) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = fmt.Fprintf(buf, "Discrepancy report league=%s season=%s tolerance=%d\n", leagueID, season, tolerance)
	_, _ = buf.WriteString(reportRule)
	_, _ = fmt.Fprintf(buf, "%-6s %-26s %-24s %-8s %9s %9s %6s %s\n", "STATUS", "PLAYER", "TEAM", "METRIC", "REFERENCE", "COMPUTED", "DELTA", "NOTE")
	_, _ = buf.WriteString(reportRule)

	passed, failed, unmatched := 0, 0, 0
	for _, record := range records {
		status := "PASS"
		if record.Passed() {
			passed++
		} else {
			status = "FAIL"
			failed++
		}
		note := ""
		switch {
		case !record.Matched:
			note = "no computed row"
			unmatched++
		case record.LowConfidence:
			note = "low confidence"
		}
		_, _ = fmt.Fprintf(buf, "%-6s %-26s %-24s %-8s %9d %9d %+6d %s\n",
			status,
			truncate(record.PlayerName, 26),
			truncate(record.TeamName, 24),
			string(record.Metric),
			record.ReferenceValue,
			record.ComputedValue,
			record.Delta,
			note,
		)
	}

	_, _ = buf.WriteString(reportRule)
	_, _ = fmt.Fprintf(buf, "%d rows: %d passed, %d failed, %d without computed row\n", len(records), passed, failed, unmatched)

	_, err := w.Write(buf.B)
	return err
}

func RenderSeedResult(w io.Writer, result SeedResult) error {
	_, err := fmt.Fprintf(w, "Seeded league=%s season=%s: fetched=%d upserted=%d skipped=%d\n",
		result.LeagueID, result.Season, result.Fetched, result.Upserted, result.Skipped)
	return err
}

func RenderRunSummary(w io.Writer, summary RunSummary) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = fmt.Fprintf(buf, "Run league=%s season=%s finished in %s\n", summary.LeagueID, summary.Season, summary.Duration.Round(time.Millisecond))
	rows := []struct {
		label string
		value int
	}{
		{"matches", summary.Matches},
		{"linked to event source", summary.Linked},
		{"resolved", summary.Resolved},
		{"unresolved", summary.Unresolved},
		{"ambiguous", summary.Ambiguous},
		{"fetched", summary.Fetched},
		{"remote failures", summary.RemoteFailures},
		{"other failures", summary.Failed},
		{"folded events", summary.Folded},
		{"skipped events", summary.SkippedEvents},
		{"suspected duplicates", summary.SuspectedDuplicates},
	}
	for _, row := range rows {
		_, _ = fmt.Fprintf(buf, "  %-24s %6d\n", row.label, row.value)
	}

	_, err := w.Write(buf.B)
	return err
}

func RenderSanityReport(w io.Writer, report SanityReport) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	verdict := "OK"
	if !report.Consistent {
		verdict = "INCONSISTENT"
	}
	_, _ = fmt.Fprintf(buf, "Standings check league=%s season=%s: %s (standings=%d players=%d delta=%+d tolerance=%d)\n",
		report.LeagueID, report.Season, verdict, report.StandingsGoals, report.PlayerGoals, report.Delta, report.Tolerance)
	for _, team := range report.Teams {
		_, _ = fmt.Fprintf(buf, "  %-28s gf=%4d players=%4d delta=%+4d\n", truncate(team.TeamName, 28), team.GoalsFor, team.PlayerGoals, team.Delta)
	}

	_, err := w.Write(buf.B)
	return err
}

func RenderPlayers(w io.Writer, rows []playerstats.PlayerSeasonStats) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = fmt.Fprintf(buf, "%-26s %-24s %5s %5s %5s %4s %4s %s\n", "PLAYER", "TEAM", "GLS", "AST", "APP", "YC", "RC", "KEY")
	for _, row := range rows {
		key := row.Key
		switch {
		case row.LowConfidence:
			key += " (low confidence)"
		case row.IsNameKeyed():
			key += " (no provider id)"
		}
		_, _ = fmt.Fprintf(buf, "%-26s %-24s %5d %5d %5d %4d %4d %s\n",
			truncate(row.PlayerName, 26),
			truncate(row.TeamName, 24),
			row.Goals,
			row.Assists,
			row.Appearances,
			row.YellowCards,
			row.RedCards,
			key,
		)
	}
	if len(rows) == 0 {
		_, _ = buf.WriteString("no players found\n")
	}

	_, err := w.Write(buf.B)
	return err
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "~"
}
