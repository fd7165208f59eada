package usecase

import (
	"context"
	"sync"
)

type countingGate struct {
	mu    sync.Mutex
	calls int
}

func (g *countingGate) Wait(ctx context.Context) error {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return ctx.Err()
}

func (g *countingGate) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeEventProvider struct {
	mu         sync.Mutex
	listing    []ExternalMatch
	pageCap    int
	sameOffset bool
	listErr    error
	listCalls  int
	events     map[string][]ExternalEvent
	eventErrs  map[string]error
	fetchCalls []string
}

func (f *fakeEventProvider) ListMatches(_ context.Context, _ int64, _ string, offset, limit int) (ExternalMatchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if f.listErr != nil {
		return ExternalMatchPage{}, f.listErr
	}
	if f.sameOffset {
		offset = 0
	}
	if f.pageCap > 0 && limit > f.pageCap {
		limit = f.pageCap
	}
	if offset >= len(f.listing) {
		return ExternalMatchPage{Total: len(f.listing)}, nil
	}
	end := offset + limit
	if end > len(f.listing) {
		end = len(f.listing)
	}
	page := make([]ExternalMatch, 0, end-offset)
	page = append(page, f.listing[offset:end]...)
	return ExternalMatchPage{Matches: page, Total: len(f.listing)}, nil
}

func (f *fakeEventProvider) FetchEvents(_ context.Context, externalMatchID string) ([]ExternalEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetchCalls = append(f.fetchCalls, externalMatchID)
	if err := f.eventErrs[externalMatchID]; err != nil {
		return nil, err
	}
	return append([]ExternalEvent(nil), f.events[externalMatchID]...), nil
}

func (f *fakeEventProvider) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeScheduleProvider struct {
	schedule    []ExternalScheduleMatch
	standings   []ExternalStanding
	scheduleErr error
}

func (f *fakeScheduleProvider) FetchSeasonSchedule(context.Context, string, string) ([]ExternalScheduleMatch, error) {
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	return f.schedule, nil
}

func (f *fakeScheduleProvider) FetchStandings(context.Context, string, string) ([]ExternalStanding, error) {
	return f.standings, nil
}

func strPtr(v string) *string {
	return &v
}

func intPtr(v int) *int {
	return &v
}
