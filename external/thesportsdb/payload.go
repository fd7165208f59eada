package thesportsdb

import (
	"bytes"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

type eventsEnvelope struct {
	Events []eventItem `json:"events"`
}

type eventItem struct {
	ID        flexString `json:"idEvent"`
	LeagueID  flexString `json:"idLeague"`
	Season    string     `json:"strSeason"`
	Round     flexInt    `json:"intRound"`
	HomeTeam  string     `json:"strHomeTeam"`
	AwayTeam  string     `json:"strAwayTeam"`
	HomeScore flexInt    `json:"intHomeScore"`
	AwayScore flexInt    `json:"intAwayScore"`
	Date      string     `json:"dateEvent"`
	Time      string     `json:"strTime"`
	Timestamp string     `json:"strTimestamp"`
	Status    string     `json:"strStatus"`
}

type tableEnvelope struct {
	Table []tableItem `json:"table"`
}

type tableItem struct {
	Team         string  `json:"strTeam"`
	Rank         flexInt `json:"intRank"`
	Played       flexInt `json:"intPlayed"`
	Win          flexInt `json:"intWin"`
	Draw         flexInt `json:"intDraw"`
	Loss         flexInt `json:"intLoss"`
	GoalsFor     flexInt `json:"intGoalsFor"`
	GoalsAgainst flexInt `json:"intGoalsAgainst"`
	Points       flexInt `json:"intPoints"`
}

// flexInt accepts numbers, numeric strings, empty strings and null. The
// provider sends most integers as strings.
type flexInt struct {
	Value int
	Set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = flexInt{}
		return nil
	}

	if trimmed[0] == '"' {
		var raw string
		if err := sonic.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*f = flexInt{}
			return nil
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			*f = flexInt{}
			return nil
		}
		*f = flexInt{Value: parsed, Set: true}
		return nil
	}

	var number float64
	if err := sonic.Unmarshal(trimmed, &number); err != nil {
		return err
	}
	*f = flexInt{Value: int(number), Set: true}
	return nil
}

func (f flexInt) Int() int {
	return f.Value
}

func (f flexInt) Ptr() *int {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

// flexString accepts strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var raw string
		if err := sonic.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		*f = flexString(raw)
		return nil
	}
	*f = flexString(string(trimmed))
	return nil
}

func (f flexString) String() string {
	return string(f)
}
