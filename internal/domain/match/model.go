package match

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusFinished   Status = "FINISHED"
	StatusOther      Status = "OTHER"
)

// Match is one fixture from the schedule source. ExternalMatchID stays empty
// until the identity resolver links it to the event source.
type Match struct {
	ID              string
	LeagueID        string
	Season          string
	Round           int
	HomeTeamName    string
	AwayTeamName    string
	Date            time.Time
	Status          Status
	HomeScore       *int
	AwayScore       *int
	SourceEventID   string
	ExternalMatchID string
}

func (m Match) IsResolved() bool {
	return strings.TrimSpace(m.ExternalMatchID) != ""
}

func (m Match) IsFinished() bool {
	return m.Status == StatusFinished
}

// PublicID is the stable local id of a schedule source event.
func PublicID(leagueID, sourceEventID string) string {
	return fmt.Sprintf("%s-%s", strings.TrimSpace(leagueID), strings.TrimSpace(sourceEventID))
}

// NormalizeStatus maps provider status strings onto the three states the
// reconciler cares about.
func NormalizeStatus(value string) Status {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "NS", "NOT STARTED", "NOT_STARTED", "TBD", "SCHEDULED":
		return StatusNotStarted
	case "FT", "AET", "PEN", "FINISHED", "MATCH FINISHED", "FULL TIME", "FINISHED AFTER EXTRA TIME", "FINISHED AFTER PENALTIES":
		return StatusFinished
	default:
		return StatusOther
	}
}

// Day truncates t to its calendar day in loc. A nil loc means UTC.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD calendar day.
func ParseDay(raw string) (time.Time, error) {
	return time.Parse(time.DateOnly, strings.TrimSpace(raw))
}

// DaysBetween returns the absolute number of calendar days between a and b.
func DaysBetween(a, b time.Time) int {
	diff := Day(a, time.UTC).Sub(Day(b, time.UTC)).Hours() / 24
	if diff < 0 {
		diff = -diff
	}
	return int(diff + 0.5)
}
