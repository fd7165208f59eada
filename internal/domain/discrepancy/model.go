package discrepancy

import "strings"

type Metric string

const (
	MetricGoals   Metric = "goals"
	MetricAssists Metric = "assists"
)

func ParseMetric(raw string) (Metric, bool) {
	switch Metric(strings.ToLower(strings.TrimSpace(raw))) {
	case MetricGoals:
		return MetricGoals, true
	case MetricAssists:
		return MetricAssists, true
	default:
		return "", false
	}
}

// ReferenceEntry is one row of the manually curated reference table. An
// empty LeagueID applies the row to every reconciled league.
type ReferenceEntry struct {
	LeagueID   string `json:"leagueId"`
	PlayerName string `json:"playerName" validate:"required"`
	TeamName   string `json:"teamName"`
	PlayerID   int64  `json:"playerId" validate:"gte=0"`
	Metric     Metric `json:"metric" validate:"required,oneof=goals assists"`
	Value      int    `json:"value" validate:"gte=0"`
}

// ForLeague keeps the entries that apply to leagueID.
func ForLeague(refs []ReferenceEntry, leagueID string) []ReferenceEntry {
	out := make([]ReferenceEntry, 0, len(refs))
	for _, ref := range refs {
		if ref.LeagueID == "" || ref.LeagueID == leagueID {
			out = append(out, ref)
		}
	}
	return out
}

// Record compares one reference value with the computed one.
// Delta is ReferenceValue - ComputedValue.
type Record struct {
	PlayerName     string
	TeamName       string
	Metric         Metric
	ReferenceValue int
	ComputedValue  int
	Delta          int
	Matched        bool
	LowConfidence  bool
}

func NewRecord(ref ReferenceEntry, computed int, matched, lowConfidence bool) Record {
	return Record{
		PlayerName:     ref.PlayerName,
		TeamName:       ref.TeamName,
		Metric:         ref.Metric,
		ReferenceValue: ref.Value,
		ComputedValue:  computed,
		Delta:          ref.Value - computed,
		Matched:        matched,
		LowConfidence:  lowConfidence,
	}
}

func (r Record) Passed() bool {
	return r.Delta == 0
}

// Exceeds reports whether |Delta| is above tolerance.
func (r Record) Exceeds(tolerance int) bool {
	delta := r.Delta
	if delta < 0 {
		delta = -delta
	}
	return delta > tolerance
}
