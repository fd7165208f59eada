package thesportsdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/kleague-reconciler/internal/platform/resilience"
	"github.com/riskibarqy/kleague-reconciler/internal/usecase"
)

const testKey = "secret-key-123"

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*ClientConfig)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL + "/api/v1/json",
		APIKey:     testKey,
		Timeout:    time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	client := NewClient(cfg)
	client.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return client
}

func TestClient_FetchSeasonSchedule(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/json/"+testKey+"/eventsseason.php" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("id") != "4689" || r.URL.Query().Get("s") != "2025" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"events":[
			{"idEvent":"2042","intRound":"8","strHomeTeam":"Suwon FC","strAwayTeam":"Sangju Sangmu","intHomeScore":"2","intAwayScore":"0","dateEvent":"2025-04-12","strTime":"05:00:00","strTimestamp":"2025-04-12T05:00:00","strStatus":"Match Finished"},
			{"idEvent":2043,"intRound":9,"strHomeTeam":"FC Seoul","strAwayTeam":"Ulsan HD","intHomeScore":null,"intAwayScore":"","dateEvent":"2025-04-19","strTime":"","strTimestamp":null,"strStatus":"Not Started"}
		]}`))
	}, nil)

	items, err := client.FetchSeasonSchedule(context.Background(), "4689", "2025")
	if err != nil {
		t.Fatalf("fetch schedule: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(items))
	}

	first := items[0]
	if first.SourceEventID != "2042" || first.Round != 8 || first.HomeScore == nil || *first.HomeScore != 2 {
		t.Fatalf("unexpected first match: %+v", first)
	}
	if !first.Date.Equal(time.Date(2025, 4, 12, 5, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first date: %s", first.Date)
	}

	second := items[1]
	if second.SourceEventID != "2043" || second.Round != 9 || second.HomeScore != nil || second.AwayScore != nil {
		t.Fatalf("unexpected second match: %+v", second)
	}
	if !second.Date.Equal(time.Date(2025, 4, 19, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected second date: %s", second.Date)
	}
}

func TestClient_FetchSeasonScheduleNullEvents(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"events":null}`))
	}, nil)

	items, err := client.FetchSeasonSchedule(context.Background(), "4689", "1999")
	if err != nil {
		t.Fatalf("fetch schedule: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no matches, got %d", len(items))
	}
}

func TestClient_FetchStandings(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/lookuptable.php") || r.URL.Query().Get("l") != "4689" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"table":[{"strTeam":"Ulsan HD","intRank":"1","intPlayed":"38","intWin":"22","intDraw":"9","intLoss":"7","intGoalsFor":"62","intGoalsAgainst":"40","intPoints":"75"}]}`))
	}, nil)

	items, err := client.FetchStandings(context.Background(), "4689", "2025")
	if err != nil {
		t.Fatalf("fetch standings: %v", err)
	}
	if len(items) != 1 || items[0].GoalsFor != 62 || items[0].Points != 75 || items[0].Lost != 7 {
		t.Fatalf("unexpected standings: %+v", items)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"events":[]}`))
	}, func(cfg *ClientConfig) { cfg.MaxRetries = 1 })

	if _, err := client.FetchSeasonSchedule(context.Background(), "4689", "2025"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", hits.Load())
	}
}

func TestClient_NonSuccessIsRemoteUnavailableAndRedacted(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "not found", http.StatusNotFound)
	}, func(cfg *ClientConfig) { cfg.MaxRetries = 3 })

	_, err := client.FetchSeasonSchedule(context.Background(), "4689", "2025")
	if !errors.Is(err, usecase.ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
	}
	if strings.Contains(err.Error(), testKey) {
		t.Fatalf("api key leaked into error: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("4xx must not be retried, got %d requests", hits.Load())
	}
}

func TestClient_OpenCircuitSkipsRequests(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	var transitions atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Hour, HalfOpenMaxReq: 1}
		cfg.OnCircuitStateChange = func(string, resilience.CircuitState, resilience.CircuitState) { transitions.Add(1) }
	})

	for i := 0; i < 2; i++ {
		_, err := client.FetchStandings(context.Background(), "4689", "2025")
		if !errors.Is(err, usecase.ErrRemoteUnavailable) {
			t.Fatalf("call %d: expected ErrRemoteUnavailable, got %v", i, err)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("open circuit must reject the second call, got %d requests", hits.Load())
	}
	if transitions.Load() != 1 {
		t.Fatalf("expected one breaker transition, got %d", transitions.Load())
	}
}

func TestClient_MissingKey(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{})
	if _, err := client.FetchStandings(context.Background(), "4689", "2025"); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
