package highlightly

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/kleague-reconciler/internal/usecase"
)

const testKey = "hl-secret"

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*ClientConfig)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := ClientConfig{
		BaseURL: server.URL,
		APIKey:  testKey,
		Timeout: time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	client := NewClient(cfg)
	client.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return client
}

func TestClient_ListMatchesSendsAuthAndPagination(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matches" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-rapidapi-key"); got != testKey {
			t.Errorf("expected auth header, got %q", got)
		}
		q := r.URL.Query()
		if q.Get("leagueId") != "249276" || q.Get("season") != "2025" || q.Get("offset") != "100" || q.Get("limit") != "50" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data":[
			{"id":903,"date":"2025-04-12T05:00:00.000Z","homeTeam":{"name":"Suwon FC"},"awayTeam":{"name":"Sangju Sangmu FC"},"state":{"description":"Finished"}},
			{"id":null,"date":"2025-04-12T05:00:00.000Z","homeTeam":{"name":"x"},"awayTeam":{"name":"y"}}
		],"pagination":{"totalCount":151,"offset":100,"limit":50}}`))
	}, nil)

	page, err := client.ListMatches(context.Background(), 249276, "2025", 100, 50)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if page.Total != 151 {
		t.Fatalf("expected total 151, got %d", page.Total)
	}
	if len(page.Matches) != 1 {
		t.Fatalf("expected id-less row to be dropped, got %+v", page.Matches)
	}
	got := page.Matches[0]
	if got.ID != "903" || got.HomeTeamName != "Suwon FC" || got.AwayTeamName != "Sangju Sangmu FC" || got.Status != "Finished" {
		t.Fatalf("unexpected match %+v", got)
	}
	if !got.Date.Equal(time.Date(2025, 4, 12, 5, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %s", got.Date)
	}
}

func TestClient_CustomAuthHeader(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != testKey {
			t.Errorf("expected custom auth header, got %q", got)
		}
		_, _ = w.Write([]byte(`[]`))
	}, func(cfg *ClientConfig) {
		cfg.AuthHeader = "Authorization"
	})

	events, err := client.FetchEvents(context.Background(), "903")
	if err != nil {
		t.Fatalf("fetch events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
}

func TestClient_FetchEventsParsesClockAndAssist(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events/903" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"type":"Goal","time":"45+2","player":"Ahn Byong-jun","playerId":7001,"assist":"Lee Seung-woo","assistingPlayerId":"7002","team":{"name":"Suwon FC"}},
			{"type":"Penalty","time":78,"player":"Ahn Byong-jun","playerId":7001,"assist":null,"team":{"name":"Suwon FC"}},
			{"type":"Yellow Card","time":"12'","player":"Kim Dong-hyun","team":{"name":"Sangju Sangmu FC"}}
		]`))
	}, nil)

	events, err := client.FetchEvents(context.Background(), " 903 ")
	if err != nil {
		t.Fatalf("fetch events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	first := events[0]
	if first.Minute != 45 || first.ExtraMinute != 2 {
		t.Fatalf("expected 45+2, got %d+%d", first.Minute, first.ExtraMinute)
	}
	if first.PlayerID != 7001 || first.AssistingPlayerID != 7002 || first.Assist == nil || *first.Assist != "Lee Seung-woo" {
		t.Fatalf("unexpected first event %+v", first)
	}

	second := events[1]
	if second.Minute != 78 || second.Assist != nil || second.AssistingPlayerID != 0 {
		t.Fatalf("unexpected second event %+v", second)
	}

	third := events[2]
	if third.Minute != 12 || third.PlayerID != 0 || third.TeamName != "Sangju Sangmu FC" {
		t.Fatalf("unexpected third event %+v", third)
	}
}

func TestClient_NonSuccessIsRemoteUnavailable(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"invalid key"}`))
	}, func(cfg *ClientConfig) {
		cfg.MaxRetries = 2
	})

	_, err := client.FetchEvents(context.Background(), "903")
	if !errors.Is(err, usecase.ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected client errors not to be retried, got %d calls", got)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"type":"Goal","time":10,"player":"A","team":{"name":"B"}}]`))
	}, func(cfg *ClientConfig) {
		cfg.MaxRetries = 1
	})

	events, err := client.FetchEvents(context.Background(), "903")
	if err != nil {
		t.Fatalf("fetch events: %v", err)
	}
	if len(events) != 1 || calls.Load() != 2 {
		t.Fatalf("expected one retry and one event, got calls=%d events=%d", calls.Load(), len(events))
	}
}

func TestClient_MalformedPayload(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	}, nil)

	_, err := client.FetchEvents(context.Background(), "903")
	if !errors.Is(err, usecase.ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
	}
}

func TestClient_RequiresKeyAndID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Errorf("no request expected")
	}, func(cfg *ClientConfig) {
		cfg.APIKey = ""
	})

	if _, err := client.FetchEvents(context.Background(), "903"); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing key, got %v", err)
	}
	if _, err := client.FetchEvents(context.Background(), "  "); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty id, got %v", err)
	}
	if _, err := client.ListMatches(context.Background(), 0, "2025", 0, 10); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for league id, got %v", err)
	}
}

func TestEventClock(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw          string
		minute, plus int
	}{
		{`90`, 90, 0},
		{`"90+4"`, 90, 4},
		{`"45 + 1"`, 45, 1},
		{`"33'"`, 33, 0},
		{`null`, 0, 0},
		{`""`, 0, 0},
	}
	for _, tc := range cases {
		var clock eventClock
		if err := clock.UnmarshalJSON([]byte(tc.raw)); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if clock.Minute != tc.minute || clock.Extra != tc.plus {
			t.Fatalf("%s: expected %d+%d, got %d+%d", tc.raw, tc.minute, tc.plus, clock.Minute, clock.Extra)
		}
	}
}
