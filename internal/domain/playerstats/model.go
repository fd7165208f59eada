package playerstats

import (
	"strconv"
	"strings"

	"github.com/riskibarqy/kleague-reconciler/internal/platform/namematch"
)

// PlayerSeasonStats is the running per-player total for one league season.
// Key is "id:<playerId>" when the event source supplied an id and
// "name:<normalized name>" otherwise.
type PlayerSeasonStats struct {
	Key           string
	LeagueID      string
	Season        string
	PlayerID      int64
	PlayerName    string
	TeamName      string
	Goals         int
	Assists       int
	Appearances   int
	YellowCards   int
	RedCards      int
	LowConfidence bool
}

func IDKey(id int64) string {
	return "id:" + strconv.FormatInt(id, 10)
}

// NameKey returns "" when name normalizes to nothing.
func NameKey(name string) string {
	normalized := namematch.Normalize(name)
	if normalized == "" {
		return ""
	}
	return "name:" + normalized
}

// EventLedgerKey identifies one folded event of a match.
func EventLedgerKey(matchID string, index int) string {
	return "event:" + matchID + ":" + strconv.Itoa(index)
}

// AppearanceLedgerKey identifies one credited appearance of a player in a match.
func AppearanceLedgerKey(matchID, playerKey string) string {
	return "appearance:" + matchID + ":" + playerKey
}

func (s PlayerSeasonStats) IsNameKeyed() bool {
	return strings.HasPrefix(s.Key, "name:")
}

// Value returns the counter for metric ("goals" or "assists").
func (s PlayerSeasonStats) Value(metric string) int {
	switch strings.ToLower(strings.TrimSpace(metric)) {
	case "goals":
		return s.Goals
	case "assists":
		return s.Assists
	case "appearances":
		return s.Appearances
	case "yellow_cards":
		return s.YellowCards
	case "red_cards":
		return s.RedCards
	default:
		return 0
	}
}
