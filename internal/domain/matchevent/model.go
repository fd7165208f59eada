package matchevent

import (
	"strconv"
	"strings"
)

type Type string

const (
	TypeGoal    Type = "GOAL"
	TypePenalty Type = "PENALTY"
	TypeCard    Type = "CARD"
	TypeOther   Type = "OTHER"
)

type Card string

const (
	CardNone   Card = ""
	CardYellow Card = "YELLOW"
	CardRed    Card = "RED"
)

// MatchEvent is one in-match occurrence reported by the event source. It is
// transient: events are folded into season statistics and never stored.
type MatchEvent struct {
	MatchID             string
	Type                Type
	Card                Card
	Detail              string
	Minute              int
	ExtraMinute         int
	ScoringPlayerID     int64
	ScoringPlayerName   string
	AssistingPlayerID   int64
	AssistingPlayerName string
	TeamRef             string
}

// IsScoring reports whether the event credits a goal.
func (e MatchEvent) IsScoring() bool {
	return e.Type == TypeGoal || e.Type == TypePenalty
}

// HasAssist reports whether an assisting player is present after sentinel
// normalization.
func (e MatchEvent) HasAssist() bool {
	return e.AssistingPlayerID > 0 || AssistName(e.AssistingPlayerName) != ""
}

// Signature identifies events that are indistinguishable within one match.
func (e MatchEvent) Signature() string {
	var b strings.Builder
	b.WriteString(string(e.Type))
	b.WriteByte('|')
	b.WriteString(string(e.Card))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(e.Minute))
	b.WriteByte('+')
	b.WriteString(strconv.Itoa(e.ExtraMinute))
	b.WriteByte('|')
	b.WriteString(playerRef(e.ScoringPlayerID, e.ScoringPlayerName))
	b.WriteByte('|')
	b.WriteString(playerRef(e.AssistingPlayerID, AssistName(e.AssistingPlayerName)))
	return b.String()
}

// ParseType maps a remote event type onto Type and Card. Matching is
// case-insensitive; unknown types become TypeOther.
func ParseType(raw string) (Type, Card) {
	switch strings.ToLower(strings.Join(strings.Fields(raw), " ")) {
	case "goal", "normal goal", "header goal":
		return TypeGoal, CardNone
	case "penalty", "penalty goal", "scored penalty":
		return TypePenalty, CardNone
	case "yellow card", "yellow":
		return TypeCard, CardYellow
	case "red card", "red", "second yellow card", "yellow-red card", "yellow red card", "second yellow":
		return TypeCard, CardRed
	default:
		return TypeOther, CardNone
	}
}

// AssistName returns the trimmed assist name, or "" for the sentinel values
// providers use for "no assist".
func AssistName(raw string) string {
	value := strings.TrimSpace(raw)
	switch strings.ToLower(value) {
	case "", "null", "none", "-", "n/a":
		return ""
	}
	return value
}

// AssistID treats non-positive ids as absent.
func AssistID(id int64) int64 {
	if id <= 0 {
		return 0
	}
	return id
}

func playerRef(id int64, name string) string {
	if id > 0 {
		return "id:" + strconv.FormatInt(id, 10)
	}
	return "name:" + strings.ToLower(strings.TrimSpace(name))
}
