package usecase

import (
	"context"
	"time"
)

// ScheduleProvider is the authoritative fixture source.
type ScheduleProvider interface {
	FetchSeasonSchedule(ctx context.Context, leagueID, season string) ([]ExternalScheduleMatch, error)
	FetchStandings(ctx context.Context, leagueID, season string) ([]ExternalStanding, error)
}

// EventProvider is the enrichment source for match listings and in-match
// events. Implementations return errors marked with ErrRemoteUnavailable for
// transport and status failures.
type EventProvider interface {
	ListMatches(ctx context.Context, leagueRefID int64, season string, offset, limit int) (ExternalMatchPage, error)
	FetchEvents(ctx context.Context, externalMatchID string) ([]ExternalEvent, error)
}

type ExternalScheduleMatch struct {
	SourceEventID string
	Round         int
	HomeTeamName  string
	AwayTeamName  string
	Date          time.Time
	Status        string
	HomeScore     *int
	AwayScore     *int
}

type ExternalStanding struct {
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

type ExternalMatch struct {
	ID           string
	Date         time.Time
	HomeTeamName string
	AwayTeamName string
	Status       string
}

type ExternalMatchPage struct {
	Matches []ExternalMatch
	Total   int
}

// ExternalEvent is an event as the provider reported it. Assist is nil when
// the field was null or absent.
type ExternalEvent struct {
	Type              string
	Minute            int
	ExtraMinute       int
	PlayerID          int64
	PlayerName        string
	AssistingPlayerID int64
	Assist            *string
	TeamName          string
}
