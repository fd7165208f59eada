package leaguestanding

// Standing is one league table row as published by the schedule source.
type Standing struct {
	LeagueID     string
	Season       string
	TeamName     string
	Rank         int
	Played       int
	Won          int
	Draw         int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}

// TotalGoalsFor sums goals scored across the table.
func TotalGoalsFor(rows []Standing) int {
	total := 0
	for _, row := range rows {
		total += row.GoalsFor
	}
	return total
}
