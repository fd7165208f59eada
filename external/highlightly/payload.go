package highlightly

import (
	"bytes"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

type matchesEnvelope struct {
	Data       []matchItem `json:"data"`
	Pagination struct {
		TotalCount int `json:"totalCount"`
		Offset     int `json:"offset"`
		Limit      int `json:"limit"`
	} `json:"pagination"`
}

type matchItem struct {
	ID       flexID `json:"id"`
	Date     string `json:"date"`
	HomeTeam struct {
		Name string `json:"name"`
	} `json:"homeTeam"`
	AwayTeam struct {
		Name string `json:"name"`
	} `json:"awayTeam"`
	State struct {
		Description string `json:"description"`
	} `json:"state"`
}

type eventItem struct {
	Type              string     `json:"type"`
	Time              eventClock `json:"time"`
	Player            string     `json:"player"`
	PlayerID          flexID     `json:"playerId"`
	Assist            *string    `json:"assist"`
	AssistingPlayerID flexID     `json:"assistingPlayerId"`
	Team              struct {
		Name string `json:"name"`
	} `json:"team"`
}

// eventClock reads the event minute from either a number or a string such
// as "45+2".
type eventClock struct {
	Minute int
	Extra  int
}

func (c *eventClock) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*c = eventClock{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] != '"' {
		var number float64
		if err := sonic.Unmarshal(trimmed, &number); err != nil {
			return err
		}
		c.Minute = int(number)
		return nil
	}

	var raw string
	if err := sonic.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "'")
	base, extra, _ := strings.Cut(raw, "+")
	c.Minute, _ = strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(base), "'")))
	c.Extra, _ = strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(extra), "'")))
	return nil
}

// flexID accepts ids sent as numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
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
		*f = flexID(strings.TrimSpace(raw))
		return nil
	}
	*f = flexID(string(trimmed))
	return nil
}

func (f flexID) String() string {
	return string(f)
}

// Int64 returns 0 for missing or non-numeric ids.
func (f flexID) Int64() int64 {
	v, err := strconv.ParseInt(string(f), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
