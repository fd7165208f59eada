package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/leaguestanding"
	qb "github.com/riskibarqy/kleague-reconciler/internal/platform/querybuilder"
)

type LeagueStandingRepository struct {
	db *sqlx.DB
}

func NewLeagueStandingRepository(db *sqlx.DB) *LeagueStandingRepository {
	return &LeagueStandingRepository{db: db}
}

func (r *LeagueStandingRepository) ListBySeason(ctx context.Context, leagueID, season string) ([]leaguestanding.Standing, error) {
	query, args, err := qb.Select("*").From("league_standings").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
		).
		OrderBy("rank", "points DESC", "team_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league standings query: %w", err)
	}

	var rows []leagueStandingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league standings league=%s season=%s: %w", leagueID, season, err)
	}

	out := make([]leaguestanding.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, leaguestanding.Standing{
			LeagueID:     row.LeagueID,
			Season:       row.Season,
			TeamName:     row.TeamName,
			Rank:         row.Rank,
			Played:       row.Played,
			Won:          row.Won,
			Draw:         row.Draw,
			Lost:         row.Lost,
			GoalsFor:     row.GoalsFor,
			GoalsAgainst: row.GoalsAgainst,
			Points:       row.Points,
		})
	}
	return out, nil
}

// ReplaceBySeason swaps the stored table for standings in one transaction.
func (r *LeagueStandingRepository) ReplaceBySeason(ctx context.Context, leagueID, season string, standings []leaguestanding.Standing) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace league standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery := tx.Rebind(`DELETE FROM league_standings WHERE league_id = ? AND season = ?`)
	if _, err := tx.ExecContext(ctx, clearQuery, leagueID, season); err != nil {
		return fmt.Errorf("clear league standings: %w", err)
	}

	if len(standings) > 0 {
		models := make([]any, 0, len(standings))
		seen := make(map[string]struct{}, len(standings))
		for _, item := range standings {
			teamName := strings.TrimSpace(item.TeamName)
			if _, ok := seen[teamName]; ok {
				continue
			}
			seen[teamName] = struct{}{}
			models = append(models, leagueStandingInsertModel{
				LeagueID:     leagueID,
				Season:       season,
				TeamName:     teamName,
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
		query, args, err := qb.InsertModels("league_standings", models, `ON CONFLICT (league_id, season, team_name)
DO UPDATE SET
    rank = EXCLUDED.rank,
    played = EXCLUDED.played,
    won = EXCLUDED.won,
    draw = EXCLUDED.draw,
    lost = EXCLUDED.lost,
    goals_for = EXCLUDED.goals_for,
    goals_against = EXCLUDED.goals_against,
    points = EXCLUDED.points,
    fetched_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build insert league standings query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert league standings league=%s season=%s: %w", leagueID, season, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace league standings tx: %w", err)
	}
	return nil
}
