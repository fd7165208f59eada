package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/playerstats"
	qb "github.com/riskibarqy/kleague-reconciler/internal/platform/querybuilder"
)

type PlayerStatsRepository struct {
	db *sqlx.DB
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db}
}

func (r *PlayerStatsRepository) ListBySeason(ctx context.Context, leagueID, season string) ([]playerstats.PlayerSeasonStats, error) {
	query, args, err := qb.Select("*").From("player_season_stats").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
		).
		OrderBy("player_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player season stats query: %w", err)
	}

	var rows []playerSeasonStatsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player season stats league=%s season=%s: %w", leagueID, season, err)
	}
	return playerStatsFromRows(rows), nil
}

// SearchByName matches case-insensitive substrings of the player name. LIKE
// wildcards in query are matched literally.
func (r *PlayerStatsRepository) SearchByName(ctx context.Context, leagueID, season, query string, limit int) ([]playerstats.PlayerSeasonStats, error) {
	builder := qb.Select("*").From("player_season_stats").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.ILike("player_name", "%"+qb.EscapeLike(strings.TrimSpace(query))+"%"),
		).
		OrderBy("goals DESC", "player_name", "player_key")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	sqlQuery, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search player season stats query: %w", err)
	}

	var rows []playerSeasonStatsTableModel
	if err := r.db.SelectContext(ctx, &rows, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("search player season stats query=%q: %w", query, err)
	}
	return playerStatsFromRows(rows), nil
}

func (r *PlayerStatsRepository) ListLedgerKeys(ctx context.Context, leagueID, season string) ([]string, error) {
	query, args, err := qb.Select("ledger_key").From("aggregation_ledger").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
		).
		OrderBy("ledger_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select aggregation ledger query: %w", err)
	}

	var keys []string
	if err := r.db.SelectContext(ctx, &keys, query, args...); err != nil {
		return nil, fmt.Errorf("select aggregation ledger league=%s season=%s: %w", leagueID, season, err)
	}
	return keys, nil
}

// ApplyFold records ledgerKeys and adds deltas in one transaction. Any key
// that is already stored rolls the whole fold back with ErrLedgerConflict.
func (r *PlayerStatsRepository) ApplyFold(ctx context.Context, leagueID, season string, deltas []playerstats.PlayerSeasonStats, ledgerKeys []string) error {
	if len(ledgerKeys) == 0 && len(deltas) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx apply fold: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, batch := range chunk(ledgerKeys, maxRowsPerInsert) {
		builder := qb.InsertInto("aggregation_ledger").
			Columns("league_id", "season", "ledger_key").
			Suffix("ON CONFLICT (league_id, season, ledger_key) DO NOTHING")
		for _, key := range batch {
			builder.Values(leagueID, season, key)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert aggregation ledger query: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			if isUniqueViolation(err) {
				return playerstats.ErrLedgerConflict
			}
			return fmt.Errorf("insert aggregation ledger: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("read aggregation ledger affected rows: %w", err)
		}
		if affected != int64(len(batch)) {
			return playerstats.ErrLedgerConflict
		}
	}

	for _, batch := range chunk(deltas, maxRowsPerInsert) {
		models := make([]any, 0, len(batch))
		for _, delta := range batch {
			models = append(models, playerSeasonStatsDeltaModel{
				LeagueID:      leagueID,
				Season:        season,
				PlayerKey:     delta.Key,
				PlayerID:      nullableInt64(delta.PlayerID),
				PlayerName:    strings.TrimSpace(delta.PlayerName),
				TeamName:      strings.TrimSpace(delta.TeamName),
				Goals:         delta.Goals,
				Assists:       delta.Assists,
				Appearances:   delta.Appearances,
				YellowCards:   delta.YellowCards,
				RedCards:      delta.RedCards,
				LowConfidence: delta.LowConfidence,
			})
		}

		query, args, err := qb.InsertModels("player_season_stats", models, `ON CONFLICT (league_id, season, player_key)
DO UPDATE SET
    player_id = COALESCE(EXCLUDED.player_id, player_season_stats.player_id),
    player_name = COALESCE(NULLIF(EXCLUDED.player_name, ''), player_season_stats.player_name),
    team_name = COALESCE(NULLIF(EXCLUDED.team_name, ''), player_season_stats.team_name),
    goals = player_season_stats.goals + EXCLUDED.goals,
    assists = player_season_stats.assists + EXCLUDED.assists,
    appearances = player_season_stats.appearances + EXCLUDED.appearances,
    yellow_cards = player_season_stats.yellow_cards + EXCLUDED.yellow_cards,
    red_cards = player_season_stats.red_cards + EXCLUDED.red_cards,
    low_confidence = EXCLUDED.low_confidence,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert player season stats query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert player season stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit apply fold tx: %w", err)
	}
	return nil
}

func playerStatsFromRows(rows []playerSeasonStatsTableModel) []playerstats.PlayerSeasonStats {
	out := make([]playerstats.PlayerSeasonStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerstats.PlayerSeasonStats{
			Key:           row.PlayerKey,
			LeagueID:      row.LeagueID,
			Season:        row.Season,
			PlayerID:      nullInt64ToInt64(row.PlayerID),
			PlayerName:    row.PlayerName,
			TeamName:      row.TeamName,
			Goals:         row.Goals,
			Assists:       row.Assists,
			Appearances:   row.Appearances,
			YellowCards:   row.YellowCards,
			RedCards:      row.RedCards,
			LowConfidence: row.LowConfidence,
		})
	}
	return out
}
