package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/match"
	qb "github.com/riskibarqy/kleague-reconciler/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) ListBySeason(ctx context.Context, leagueID, season string) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
		).
		OrderBy("match_date", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by season query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches league=%s season=%s: %w", leagueID, season, err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) CountBySeason(ctx context.Context, leagueID, season string, resolvedOnly bool) (int, error) {
	conditions := []qb.Condition{
		qb.Eq("league_id", leagueID),
		qb.Eq("season", season),
	}
	if resolvedOnly {
		conditions = append(conditions, qb.IsNotNull("external_match_id"))
	}

	query, args, err := qb.Count().From("matches").Where(conditions...).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count matches query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count matches league=%s season=%s: %w", leagueID, season, err)
	}
	return count, nil
}

func (r *MatchRepository) UpsertMatches(ctx context.Context, items []match.Match) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert matches: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, batch := range chunk(items, maxRowsPerInsert) {
		models := make([]any, 0, len(batch))
		for _, item := range batch {
			models = append(models, matchInsertModel{
				PublicID:      item.ID,
				LeagueID:      item.LeagueID,
				Season:        item.Season,
				Round:         item.Round,
				HomeTeam:      strings.TrimSpace(item.HomeTeamName),
				AwayTeam:      strings.TrimSpace(item.AwayTeamName),
				MatchDate:     item.Date,
				Status:        string(item.Status),
				HomeScore:     item.HomeScore,
				AwayScore:     item.AwayScore,
				SourceEventID: item.SourceEventID,
			})
		}

		query, args, err := qb.InsertModels("matches", models, `ON CONFLICT (public_id)
DO UPDATE SET
    round = EXCLUDED.round,
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    match_date = EXCLUDED.match_date,
    status = EXCLUDED.status,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    source_event_id = EXCLUDED.source_event_id,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert matches query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert matches: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert matches tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) SetExternalMatchID(ctx context.Context, matchID, externalMatchID string) error {
	query, args, err := qb.Update("matches").
		Set("external_match_id", nullableString(externalMatchID)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", matchID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set external match id query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set external match id match=%s: %w", matchID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows match=%s: %w", matchID, err)
	}
	if affected == 0 {
		return fmt.Errorf("match not found: %s", matchID)
	}
	return nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:              row.PublicID,
		LeagueID:        row.LeagueID,
		Season:          row.Season,
		Round:           row.Round,
		HomeTeamName:    row.HomeTeam,
		AwayTeamName:    row.AwayTeam,
		Date:            match.Day(row.MatchDate, nil),
		Status:          match.Status(row.Status),
		HomeScore:       nullInt32ToIntPtr(row.HomeScore),
		AwayScore:       nullInt32ToIntPtr(row.AwayScore),
		SourceEventID:   row.SourceEventID,
		ExternalMatchID: strings.TrimSpace(row.ExternalMatchID.String),
	}
}
