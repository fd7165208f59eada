package postgres

import "time"

type leagueStandingTableModel struct {
	ID           int64     `db:"id"`
	LeagueID     string    `db:"league_id"`
	Season       string    `db:"season"`
	TeamName     string    `db:"team_name"`
	Rank         int       `db:"rank"`
	Played       int       `db:"played"`
	Won          int       `db:"won"`
	Draw         int       `db:"draw"`
	Lost         int       `db:"lost"`
	GoalsFor     int       `db:"goals_for"`
	GoalsAgainst int       `db:"goals_against"`
	Points       int       `db:"points"`
	FetchedAt    time.Time `db:"fetched_at"`
}

type leagueStandingInsertModel struct {
	LeagueID     string `db:"league_id"`
	Season       string `db:"season"`
	TeamName     string `db:"team_name"`
	Rank         int    `db:"rank"`
	Played       int    `db:"played"`
	Won          int    `db:"won"`
	Draw         int    `db:"draw"`
	Lost         int    `db:"lost"`
	GoalsFor     int    `db:"goals_for"`
	GoalsAgainst int    `db:"goals_against"`
	Points       int    `db:"points"`
}
