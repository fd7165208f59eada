package postgres

import (
	"database/sql"
	"time"
)

type playerSeasonStatsTableModel struct {
	ID            int64         `db:"id"`
	LeagueID      string        `db:"league_id"`
	Season        string        `db:"season"`
	PlayerKey     string        `db:"player_key"`
	PlayerID      sql.NullInt64 `db:"player_id"`
	PlayerName    string        `db:"player_name"`
	TeamName      string        `db:"team_name"`
	Goals         int           `db:"goals"`
	Assists       int           `db:"assists"`
	Appearances   int           `db:"appearances"`
	YellowCards   int           `db:"yellow_cards"`
	RedCards      int           `db:"red_cards"`
	LowConfidence bool          `db:"low_confidence"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

// playerSeasonStatsDeltaModel carries increments; the upsert adds them to
// the stored counters.
type playerSeasonStatsDeltaModel struct {
	LeagueID      string `db:"league_id"`
	Season        string `db:"season"`
	PlayerKey     string `db:"player_key"`
	PlayerID      *int64 `db:"player_id"`
	PlayerName    string `db:"player_name"`
	TeamName      string `db:"team_name"`
	Goals         int    `db:"goals"`
	Assists       int    `db:"assists"`
	Appearances   int    `db:"appearances"`
	YellowCards   int    `db:"yellow_cards"`
	RedCards      int    `db:"red_cards"`
	LowConfidence bool   `db:"low_confidence"`
}
