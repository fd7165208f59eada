package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID              int64          `db:"id"`
	PublicID        string         `db:"public_id"`
	LeagueID        string         `db:"league_id"`
	Season          string         `db:"season"`
	Round           int            `db:"round"`
	HomeTeam        string         `db:"home_team"`
	AwayTeam        string         `db:"away_team"`
	MatchDate       time.Time      `db:"match_date"`
	Status          string         `db:"status"`
	HomeScore       sql.NullInt32  `db:"home_score"`
	AwayScore       sql.NullInt32  `db:"away_score"`
	SourceEventID   string         `db:"source_event_id"`
	ExternalMatchID sql.NullString `db:"external_match_id"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// matchInsertModel leaves external_match_id out so schedule re-seeds never
// clear a resolved link.
type matchInsertModel struct {
	PublicID      string    `db:"public_id"`
	LeagueID      string    `db:"league_id"`
	Season        string    `db:"season"`
	Round         int       `db:"round"`
	HomeTeam      string    `db:"home_team"`
	AwayTeam      string    `db:"away_team"`
	MatchDate     time.Time `db:"match_date"`
	Status        string    `db:"status"`
	HomeScore     *int      `db:"home_score"`
	AwayScore     *int      `db:"away_score"`
	SourceEventID string    `db:"source_event_id"`
}
