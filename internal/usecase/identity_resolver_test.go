package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/match"
	matchmock "github.com/riskibarqy/kleague-reconciler/internal/mocks/domain/match"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/namematch"
	"github.com/stretchr/testify/mock"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func suwonVsSangju() match.Match {
	return match.Match{
		ID:           "4689-2042",
		LeagueID:     "4689",
		Season:       "2025",
		HomeTeamName: "Suwon FC",
		AwayTeamName: "Sangju Sangmu",
		Date:         time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC),
		Status:       match.StatusFinished,
	}
}

func TestSelectCandidate_ExactDateHit(t *testing.T) {
	t.Parallel()

	candidates := []ExternalMatch{
		{ID: "hl-901", Date: time.Date(2025, 4, 12, 16, 0, 0, 0, time.UTC), HomeTeamName: "Suwon FC", AwayTeamName: "Sangju Sangmu"},
		{ID: "hl-902", Date: time.Date(2025, 4, 12, 7, 0, 0, 0, time.UTC), HomeTeamName: "Suwon Samsung Bluewings", AwayTeamName: "Sangju Sangmu"},
		{ID: "hl-903", Date: time.Date(2025, 4, 12, 5, 0, 0, 0, time.UTC), HomeTeamName: "Suwon FC", AwayTeamName: "Sangju Sangmu FC"},
		{ID: "hl-904", Date: time.Date(2025, 4, 12, 5, 0, 0, 0, time.UTC), HomeTeamName: "FC Seoul", AwayTeamName: "Ulsan HD"},
	}

	res := SelectCandidate(suwonVsSangju(), candidates, namematch.NewMatcher(namematch.KLeagueAliases()), 1, seoul(t))
	if res.Status != ResolutionResolved {
		t.Fatalf("expected resolved, got %s candidates=%v", res.Status, res.Candidates)
	}
	// hl-901 kicks off on 13 April in Seoul, so only hl-903 is on the exact day.
	if res.ExternalMatchID != "hl-903" {
		t.Fatalf("unexpected external match id: got=%s want=hl-903", res.ExternalMatchID)
	}
}

func TestSelectCandidate_EqualSimilarityIsAmbiguous(t *testing.T) {
	t.Parallel()

	item := match.Match{
		ID:           "4689-3001",
		HomeTeamName: "Suwon",
		AwayTeamName: "Daegu FC",
		Date:         time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC),
	}
	candidates := []ExternalMatch{
		{ID: "hl-1", Date: time.Date(2025, 5, 3, 6, 0, 0, 0, time.UTC), HomeTeamName: "Suwon FC", AwayTeamName: "Daegu FC"},
		{ID: "hl-2", Date: time.Date(2025, 5, 3, 6, 0, 0, 0, time.UTC), HomeTeamName: "Suwon SC", AwayTeamName: "Daegu FC"},
	}

	res := SelectCandidate(item, candidates, namematch.NewMatcher(nil), 1, time.UTC)
	if res.Status != ResolutionAmbiguous {
		t.Fatalf("expected ambiguous, got %s", res.Status)
	}
	if len(res.Candidates) != 2 || res.Candidates[0] != "hl-1" || res.Candidates[1] != "hl-2" {
		t.Fatalf("unexpected candidates: %v", res.Candidates)
	}
	if res.ExternalMatchID != "" {
		t.Fatalf("ambiguous resolution must not carry an id, got %s", res.ExternalMatchID)
	}
}

func TestSelectCandidate_NoCandidateIsUnresolved(t *testing.T) {
	t.Parallel()

	candidates := []ExternalMatch{
		{ID: "hl-1", Date: time.Date(2025, 4, 20, 6, 0, 0, 0, time.UTC), HomeTeamName: "Suwon FC", AwayTeamName: "Sangju Sangmu"},
	}
	res := SelectCandidate(suwonVsSangju(), candidates, namematch.NewMatcher(nil), 1, time.UTC)
	if res.Status != ResolutionUnresolved {
		t.Fatalf("expected unresolved, got %s", res.Status)
	}
}

func TestIdentityResolver_ResolveAndStoreCachesListing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := &fakeEventProvider{listing: []ExternalMatch{
		{ID: "hl-100", Date: time.Date(2025, 4, 12, 5, 0, 0, 0, time.UTC), HomeTeamName: "Suwon FC", AwayTeamName: "Sangju Sangmu"},
		{ID: "hl-101", Date: time.Date(2025, 4, 13, 5, 0, 0, 0, time.UTC), HomeTeamName: "FC Seoul", AwayTeamName: "Ulsan HD"},
		{ID: "hl-102", Date: time.Date(2025, 4, 13, 7, 0, 0, 0, time.UTC), HomeTeamName: "Jeonbuk", AwayTeamName: "Daegu"},
	}}
	gate := &countingGate{}
	repo := matchmock.NewRepository(t)
	resolver := NewIdentityResolver(provider, repo, gate, namematch.NewMatcher(namematch.KLeagueAliases()), IdentityResolverConfig{
		LeagueRefByLeague: map[string]int64{"4689": 249},
		DateWindowDays:    1,
		Location:          seoul(t),
		PageSize:          2,
	}, nil)

	repo.
		On("SetExternalMatchID", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), "4689-2042", "hl-100").
		Return(nil).
		Once()
	repo.
		On("SetExternalMatchID", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), "4689-2043", "hl-102").
		Return(nil).
		Once()

	res, err := resolver.ResolveAndStore(ctx, suwonVsSangju())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.ExternalMatchID != "hl-100" {
		t.Fatalf("unexpected external id: %s", res.ExternalMatchID)
	}

	second := match.Match{
		ID:           "4689-2043",
		LeagueID:     "4689",
		Season:       "2025",
		HomeTeamName: "Jeonbuk Hyundai Motors",
		AwayTeamName: "Daegu FC",
		Date:         time.Date(2025, 4, 13, 0, 0, 0, 0, time.UTC),
	}
	if _, err := resolver.ResolveAndStore(ctx, second); err != nil {
		t.Fatalf("resolve second: %v", err)
	}

	// Two pages for three matches, fetched once for both resolutions.
	if got := provider.ListCalls(); got != 2 {
		t.Fatalf("expected 2 listing calls, got %d", got)
	}
	if got := gate.Calls(); got != 2 {
		t.Fatalf("expected gate wait per listing call, got %d", got)
	}
}

func TestIdentityResolver_AmbiguousWritesNothing(t *testing.T) {
	t.Parallel()

	provider := &fakeEventProvider{listing: []ExternalMatch{
		{ID: "hl-1", Date: time.Date(2025, 5, 3, 6, 0, 0, 0, time.UTC), HomeTeamName: "Suwon FC", AwayTeamName: "Daegu FC"},
		{ID: "hl-2", Date: time.Date(2025, 5, 3, 6, 0, 0, 0, time.UTC), HomeTeamName: "Suwon SC", AwayTeamName: "Daegu FC"},
	}}
	repo := matchmock.NewRepository(t)
	resolver := NewIdentityResolver(provider, repo, &countingGate{}, namematch.NewMatcher(nil), IdentityResolverConfig{
		LeagueRefByLeague: map[string]int64{"4689": 249},
		DateWindowDays:    1,
	}, nil)

	res, err := resolver.ResolveAndStore(context.Background(), match.Match{
		ID:           "4689-3001",
		LeagueID:     "4689",
		Season:       "2025",
		HomeTeamName: "Suwon",
		AwayTeamName: "Daegu FC",
		Date:         time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrAmbiguousIdentity) {
		t.Fatalf("expected ErrAmbiguousIdentity, got %v", err)
	}
	if res.Status != ResolutionAmbiguous || len(res.Candidates) != 2 {
		t.Fatalf("unexpected resolution: %+v", res)
	}
}

func TestIdentityResolver_UnmappedLeagueIsInvalidInput(t *testing.T) {
	t.Parallel()

	resolver := NewIdentityResolver(&fakeEventProvider{}, matchmock.NewRepository(t), nil, nil, IdentityResolverConfig{}, nil)
	_, err := resolver.Resolve(context.Background(), suwonVsSangju())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIdentityResolver_ReadsEveryPageWhenSourceCapsPageSize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := &fakeEventProvider{pageCap: 2, listing: []ExternalMatch{
		{ID: "hl-201", Date: time.Date(2025, 4, 5, 5, 0, 0, 0, time.UTC), HomeTeamName: "FC Seoul", AwayTeamName: "Ulsan HD"},
		{ID: "hl-202", Date: time.Date(2025, 4, 6, 5, 0, 0, 0, time.UTC), HomeTeamName: "Jeonbuk", AwayTeamName: "Daegu"},
		{ID: "hl-203", Date: time.Date(2025, 4, 12, 5, 0, 0, 0, time.UTC), HomeTeamName: "Suwon FC", AwayTeamName: "Sangju Sangmu"},
	}}
	repo := matchmock.NewRepository(t)
	resolver := NewIdentityResolver(provider, repo, &countingGate{}, namematch.NewMatcher(namematch.KLeagueAliases()), IdentityResolverConfig{
		LeagueRefByLeague: map[string]int64{"4689": 249},
		DateWindowDays:    1,
		Location:          seoul(t),
		PageSize:          100,
	}, nil)

	repo.On("SetExternalMatchID", mock.Anything, "4689-2042", "hl-203").Return(nil).Once()

	res, err := resolver.ResolveAndStore(ctx, suwonVsSangju())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Status != ResolutionResolved || res.ExternalMatchID != "hl-203" {
		t.Fatalf("expected hl-203 from the second page, got status=%s id=%q", res.Status, res.ExternalMatchID)
	}
	if got := provider.ListCalls(); got != 2 {
		t.Fatalf("expected 2 listing calls, got %d", got)
	}
}

func TestIdentityResolver_StopsWhenSourceIgnoresOffset(t *testing.T) {
	t.Parallel()

	provider := &fakeEventProvider{pageCap: 1, sameOffset: true, listing: []ExternalMatch{
		{ID: "hl-301", Date: time.Date(2025, 4, 12, 5, 0, 0, 0, time.UTC), HomeTeamName: "Suwon FC", AwayTeamName: "Sangju Sangmu"},
		{ID: "hl-302", Date: time.Date(2025, 4, 13, 5, 0, 0, 0, time.UTC), HomeTeamName: "FC Seoul", AwayTeamName: "Ulsan HD"},
	}}
	repo := matchmock.NewRepository(t)
	resolver := NewIdentityResolver(provider, repo, &countingGate{}, namematch.NewMatcher(namematch.KLeagueAliases()), IdentityResolverConfig{
		LeagueRefByLeague: map[string]int64{"4689": 249},
		DateWindowDays:    1,
		Location:          seoul(t),
		PageSize:          100,
	}, nil)

	repo.On("SetExternalMatchID", mock.Anything, "4689-2042", "hl-301").Return(nil).Once()

	if _, err := resolver.ResolveAndStore(context.Background(), suwonVsSangju()); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// The second page repeats hl-301 and adds nothing, which ends the loop.
	if got := provider.ListCalls(); got != 2 {
		t.Fatalf("expected 2 listing calls, got %d", got)
	}
}
