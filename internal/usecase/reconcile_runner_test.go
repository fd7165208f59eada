package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/match"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/playerstats"
	"github.com/riskibarqy/kleague-reconciler/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/kleague-reconciler/internal/mocks/domain/match"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/namematch"
	"github.com/stretchr/testify/mock"
)

type runnerFixture struct {
	matches  *memory.MatchRepository
	stats    *memory.PlayerStatsRepository
	provider *fakeEventProvider
}

func (f runnerFixture) newRunner(t *testing.T) *ReconcileRunner {
	t.Helper()

	gate := &countingGate{}
	resolver := NewIdentityResolver(f.provider, f.matches, gate, namematch.NewMatcher(namematch.KLeagueAliases()), IdentityResolverConfig{
		LeagueRefByLeague: map[string]int64{"4689": 249},
		DateWindowDays:    1,
		Location:          seoul(t),
	}, nil)
	return NewReconcileRunner(
		f.matches,
		resolver,
		NewEventFetcher(f.provider, gate, nil),
		NewAggregationService(f.stats, nil),
		nil,
		nil,
	)
}

func statsByKey(t *testing.T, repo playerstats.Repository) map[string]playerstats.PlayerSeasonStats {
	t.Helper()

	rows, err := repo.ListBySeason(context.Background(), "4689", "2025")
	if err != nil {
		t.Fatalf("list stats: %v", err)
	}
	out := make(map[string]playerstats.PlayerSeasonStats, len(rows))
	for _, row := range rows {
		out[row.Key] = row
	}
	return out
}

func TestReconcileRunner_TwoGoalMatchIsStableAcrossRuns(t *testing.T) {
	t.Parallel()

	fixture := runnerFixture{
		matches: memory.NewMatchRepository([]match.Match{suwonVsSangju()}),
		stats:   memory.NewPlayerStatsRepository(),
		provider: &fakeEventProvider{
			listing: []ExternalMatch{
				{ID: "hl-100", Date: time.Date(2025, 4, 12, 5, 0, 0, 0, time.UTC), HomeTeamName: "Suwon FC", AwayTeamName: "Sangju Sangmu"},
			},
			events: map[string][]ExternalEvent{
				"hl-100": {
					{Type: "Goal", Minute: 78, PlayerID: 11, PlayerName: "Jung Jae-yong", TeamName: "Suwon FC"},
					{Type: "Goal", Minute: 23, PlayerID: 10, PlayerName: "Lee Seung-woo", Assist: strPtr("Jung Jae-yong"), AssistingPlayerID: 11, TeamName: "Suwon FC"},
				},
			},
		},
	}

	summary, err := fixture.newRunner(t).Run(context.Background(), "4689", "2025", RunOptions{Resolve: true, Aggregate: true})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if summary.Matches != 1 || summary.Linked != 1 || summary.Resolved != 1 || summary.Fetched != 1 || summary.Folded != 2 || summary.SkippedEvents != 0 {
		t.Fatalf("unexpected first summary: %+v", summary)
	}

	assertTotals := func(stage string) {
		t.Helper()
		rows := statsByKey(t, fixture.stats)
		lee := rows[playerstats.IDKey(10)]
		jung := rows[playerstats.IDKey(11)]
		if lee.Goals != 1 || lee.Assists != 0 || lee.Appearances != 1 {
			t.Fatalf("%s: unexpected totals for player 10: %+v", stage, lee)
		}
		if jung.Goals != 1 || jung.Assists != 1 || jung.Appearances != 1 {
			t.Fatalf("%s: unexpected totals for player 11: %+v", stage, jung)
		}
	}
	assertTotals("first run")

	stored, err := fixture.matches.ListBySeason(context.Background(), "4689", "2025")
	if err != nil || len(stored) != 1 || stored[0].ExternalMatchID != "hl-100" {
		t.Fatalf("expected resolved id to be stored, got %+v err=%v", stored, err)
	}

	summary, err = fixture.newRunner(t).Run(context.Background(), "4689", "2025", RunOptions{Resolve: true, Aggregate: true})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Folded != 0 || summary.SkippedEvents != 2 {
		t.Fatalf("second run must skip every event, got %+v", summary)
	}
	assertTotals("second run")

	if got := fixture.provider.ListCalls(); got != 1 {
		t.Fatalf("resolved match must not be listed again, got %d listing calls", got)
	}
}

func TestReconcileRunner_ContinuesAfterFailingMatch(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 4, 19, 0, 0, 0, 0, time.UTC)
	fixture := runnerFixture{
		matches: memory.NewMatchRepository([]match.Match{
			{ID: "4689-1", LeagueID: "4689", Season: "2025", HomeTeamName: "FC Seoul", AwayTeamName: "Ulsan HD", Date: day, Status: match.StatusFinished, ExternalMatchID: "hl-bad"},
			{ID: "4689-2", LeagueID: "4689", Season: "2025", HomeTeamName: "Daegu FC", AwayTeamName: "Gwangju FC", Date: day, Status: match.StatusFinished, ExternalMatchID: "hl-good"},
			{ID: "4689-3", LeagueID: "4689", Season: "2025", HomeTeamName: "Pohang Steelers", AwayTeamName: "Gangwon FC", Date: day.AddDate(0, 0, 7), Status: match.StatusNotStarted, ExternalMatchID: "hl-later"},
		}),
		stats: memory.NewPlayerStatsRepository(),
		provider: &fakeEventProvider{
			events: map[string][]ExternalEvent{
				"hl-good": {{Type: "Goal", Minute: 9, PlayerID: 30, PlayerName: "Cesinha", TeamName: "Daegu FC"}},
			},
			eventErrs: map[string]error{
				"hl-bad": fmt.Errorf("%w: status 502", ErrRemoteUnavailable),
			},
		},
	}

	summary, err := fixture.newRunner(t).Run(context.Background(), "4689", "2025", RunOptions{Resolve: true, Aggregate: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RemoteFailures != 1 || summary.Fetched != 1 || summary.Folded != 1 || summary.Resolved != 3 || summary.Linked != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := statsByKey(t, fixture.stats)[playerstats.IDKey(30)].Goals; got != 1 {
		t.Fatalf("expected goal from the healthy match, got %d", got)
	}
	if len(fixture.provider.fetchCalls) != 2 {
		t.Fatalf("not-started match must not be fetched, calls=%v", fixture.provider.fetchCalls)
	}
}

func TestReconcileRunner_CountsAmbiguousAndUnresolved(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)
	fixture := runnerFixture{
		matches: memory.NewMatchRepository([]match.Match{
			{ID: "4689-1", LeagueID: "4689", Season: "2025", HomeTeamName: "Suwon", AwayTeamName: "Daegu FC", Date: day, Status: match.StatusFinished},
			{ID: "4689-2", LeagueID: "4689", Season: "2025", HomeTeamName: "Jeju United", AwayTeamName: "Incheon United", Date: day, Status: match.StatusFinished},
		}),
		stats: memory.NewPlayerStatsRepository(),
		provider: &fakeEventProvider{listing: []ExternalMatch{
			{ID: "hl-1", Date: day.Add(6 * time.Hour), HomeTeamName: "Suwon Sharks", AwayTeamName: "Daegu FC"},
			{ID: "hl-2", Date: day.Add(6 * time.Hour), HomeTeamName: "Suwon Stars", AwayTeamName: "Daegu FC"},
		}},
	}

	summary, err := fixture.newRunner(t).Run(context.Background(), "4689", "2025", RunOptions{Resolve: true, Aggregate: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Ambiguous != 1 || summary.Unresolved != 1 || summary.Resolved != 0 || summary.Fetched != 0 || summary.Linked != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	resolved, err := fixture.matches.CountBySeason(context.Background(), "4689", "2025", true)
	if err != nil || resolved != 0 {
		t.Fatalf("nothing may be written, got %d resolved err=%v", resolved, err)
	}
}

func TestReconcileRunner_LoadFailureAbortsRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	storeErr := errors.New("connection refused")
	repo.
		On("ListBySeason", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), "4689", "2025").
		Return(nil, storeErr).
		Once()

	runner := NewReconcileRunner(repo, nil, nil, nil, nil, nil)
	if _, err := runner.Run(ctx, "4689", "2025", RunOptions{Resolve: true}); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestReconcileRunner_LinkedCountFailureKeepsRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	repo.
		On("ListBySeason", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), "4689", "2025").
		Return([]match.Match{}, nil).
		Once()
	repo.
		On("CountBySeason", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), "4689", "2025", true).
		Return(0, errors.New("statement timeout")).
		Once()

	runner := NewReconcileRunner(repo, nil, nil, nil, nil, nil)
	summary, err := runner.Run(ctx, "4689", "2025", RunOptions{Resolve: true})
	if err != nil {
		t.Fatalf("count failure must not fail the run: %v", err)
	}
	if summary.Linked != 0 || summary.Matches != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
