package playerstats

import (
	"sort"
	"strings"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/matchevent"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/namematch"
)

// FoldResult describes what one Fold call changed.
type FoldResult struct {
	MatchID             string
	Applied             int
	Skipped             int
	Unattributed        int
	SuspectedDuplicates []matchevent.MatchEvent
	// Deltas carry the increments of this fold plus each row's identity.
	Deltas     []PlayerSeasonStats
	LedgerKeys []string
}

// Aggregator folds match events into season totals. It remembers every
// ledger key it has applied, so folding the same match twice changes
// nothing the second time.
type Aggregator struct {
	leagueID string
	season   string
	rows     map[string]*PlayerSeasonStats
	idByName map[string]map[string]struct{}
	applied  map[string]struct{}
}

func NewAggregator(leagueID, season string, existing []PlayerSeasonStats, ledger []string) *Aggregator {
	a := &Aggregator{
		leagueID: leagueID,
		season:   season,
		rows:     make(map[string]*PlayerSeasonStats, len(existing)),
		idByName: make(map[string]map[string]struct{}),
		applied:  make(map[string]struct{}, len(ledger)),
	}
	for _, item := range existing {
		row := item
		a.rows[row.Key] = &row
		if row.PlayerID > 0 {
			a.indexName(row.Key, row.PlayerName)
		}
	}
	for _, key := range ledger {
		a.applied[key] = struct{}{}
	}
	return a
}

type foldState struct {
	result   FoldResult
	deltas   map[string]*PlayerSeasonStats
	order    []string
	credited []string
	names    map[string]struct{}
}

func (s *foldState) delta(row *PlayerSeasonStats) *PlayerSeasonStats {
	d, ok := s.deltas[row.Key]
	if !ok {
		d = &PlayerSeasonStats{Key: row.Key}
		s.deltas[row.Key] = d
		s.order = append(s.order, row.Key)
	}
	return d
}

func (s *foldState) credit(key string) {
	for _, existing := range s.credited {
		if existing == key {
			return
		}
	}
	s.credited = append(s.credited, key)
}

// Fold applies events of one match. Events are keyed by their position in
// the list, which the event fetcher keeps stable by ordering on minute.
// Events the source adds after the last folded one are picked up by a later
// fold. An event inserted earlier in an already folded match shifts every
// later position: the inserted event goes uncounted and the last event is
// counted again. That case surfaces as a discrepancy, not here.
func (a *Aggregator) Fold(matchID string, events []matchevent.MatchEvent) FoldResult {
	state := &foldState{
		result: FoldResult{MatchID: matchID},
		deltas: make(map[string]*PlayerSeasonStats),
		names:  make(map[string]struct{}),
	}

	signatures := make(map[string]int, len(events))
	for idx, ev := range events {
		sig := ev.Signature()
		if signatures[sig] > 0 {
			state.result.SuspectedDuplicates = append(state.result.SuspectedDuplicates, ev)
		}
		signatures[sig]++

		key := EventLedgerKey(matchID, idx)
		if a.isApplied(key) {
			state.result.Skipped++
			continue
		}
		a.markApplied(key)
		state.result.LedgerKeys = append(state.result.LedgerKeys, key)
		state.result.Applied++

		a.apply(state, ev)
	}

	for _, playerKey := range state.credited {
		key := AppearanceLedgerKey(matchID, playerKey)
		if a.isApplied(key) {
			continue
		}
		a.markApplied(key)
		state.result.LedgerKeys = append(state.result.LedgerKeys, key)

		row := a.rows[playerKey]
		row.Appearances++
		state.delta(row).Appearances++
	}

	// Name-keyed rows may change confidence when an id-keyed player with
	// the same name shows up.
	for name := range state.names {
		if row, ok := a.rows["name:"+name]; ok {
			state.delta(row)
		}
	}

	state.result.Deltas = make([]PlayerSeasonStats, 0, len(state.order))
	for _, key := range state.order {
		row := a.rows[key]
		d := *state.deltas[key]
		d.LeagueID = a.leagueID
		d.Season = a.season
		d.PlayerID = row.PlayerID
		d.PlayerName = row.PlayerName
		d.TeamName = row.TeamName
		d.LowConfidence = a.lowConfidence(row)
		state.result.Deltas = append(state.result.Deltas, d)
	}

	return state.result
}

func (a *Aggregator) apply(state *foldState, ev matchevent.MatchEvent) {
	switch {
	case ev.IsScoring():
		scorer := a.resolve(state, ev.ScoringPlayerID, ev.ScoringPlayerName, ev.TeamRef)
		if scorer == nil {
			state.result.Unattributed++
			return
		}
		scorer.Goals++
		state.delta(scorer).Goals++
		state.credit(scorer.Key)

		if !ev.HasAssist() {
			return
		}
		assister := a.resolve(state, matchevent.AssistID(ev.AssistingPlayerID), matchevent.AssistName(ev.AssistingPlayerName), ev.TeamRef)
		if assister == nil || assister.Key == scorer.Key {
			return
		}
		assister.Assists++
		state.delta(assister).Assists++
		state.credit(assister.Key)
	case ev.Type == matchevent.TypeCard:
		player := a.resolve(state, ev.ScoringPlayerID, ev.ScoringPlayerName, ev.TeamRef)
		if player == nil {
			state.result.Unattributed++
			return
		}
		if ev.Card == matchevent.CardRed {
			player.RedCards++
			state.delta(player).RedCards++
		} else {
			player.YellowCards++
			state.delta(player).YellowCards++
		}
		state.credit(player.Key)
	}
}

// resolve finds or creates the row for a player. Ids win; a name-only
// player joins the single id-keyed player with that exact name and is kept
// apart otherwise.
func (a *Aggregator) resolve(state *foldState, id int64, name, team string) *PlayerSeasonStats {
	name = strings.TrimSpace(name)
	team = strings.TrimSpace(team)

	if id > 0 {
		key := IDKey(id)
		row, ok := a.rows[key]
		if !ok {
			row = &PlayerSeasonStats{Key: key, LeagueID: a.leagueID, Season: a.season, PlayerID: id}
			a.rows[key] = row
		}
		if name != "" && row.PlayerName != name {
			a.unindexName(key, row.PlayerName)
			row.PlayerName = name
			if normalized := a.indexName(key, name); normalized != "" {
				state.names[normalized] = struct{}{}
			}
		}
		if team != "" {
			row.TeamName = team
		}
		return row
	}

	normalized := namematch.Normalize(name)
	if normalized == "" {
		return nil
	}
	if ids := a.idByName[normalized]; len(ids) == 1 {
		for key := range ids {
			return a.rows[key]
		}
	}

	key := "name:" + normalized
	row, ok := a.rows[key]
	if !ok {
		row = &PlayerSeasonStats{Key: key, LeagueID: a.leagueID, Season: a.season, PlayerName: name}
		a.rows[key] = row
	}
	if team != "" && row.TeamName == "" {
		row.TeamName = team
	}
	return row
}

func (a *Aggregator) lowConfidence(row *PlayerSeasonStats) bool {
	if row.PlayerID > 0 {
		return false
	}
	return len(a.idByName[namematch.Normalize(row.PlayerName)]) > 0
}

func (a *Aggregator) indexName(key, name string) string {
	normalized := namematch.Normalize(name)
	if normalized == "" {
		return ""
	}
	ids, ok := a.idByName[normalized]
	if !ok {
		ids = make(map[string]struct{})
		a.idByName[normalized] = ids
	}
	ids[key] = struct{}{}
	return normalized
}

func (a *Aggregator) unindexName(key, name string) {
	normalized := namematch.Normalize(name)
	if ids, ok := a.idByName[normalized]; ok {
		delete(ids, key)
		if len(ids) == 0 {
			delete(a.idByName, normalized)
		}
	}
}

func (a *Aggregator) isApplied(key string) bool {
	_, ok := a.applied[key]
	return ok
}

func (a *Aggregator) markApplied(key string) {
	a.applied[key] = struct{}{}
}

// Snapshot returns every row ordered by team, player name and key.
func (a *Aggregator) Snapshot() []PlayerSeasonStats {
	out := make([]PlayerSeasonStats, 0, len(a.rows))
	for _, row := range a.rows {
		item := *row
		item.LowConfidence = a.lowConfidence(row)
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamName != out[j].TeamName {
			return out[i].TeamName < out[j].TeamName
		}
		if out[i].PlayerName != out[j].PlayerName {
			return out[i].PlayerName < out[j].PlayerName
		}
		return out[i].Key < out[j].Key
	})
	return out
}
