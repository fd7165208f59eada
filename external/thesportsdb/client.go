package thesportsdb

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/resilience"
	"github.com/riskibarqy/kleague-reconciler/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL = "https://www.thesportsdb.com/api/v1/json"
	maxPayloadSize = 6 << 20
)

var errTheSportsDBTransient = crerr.New("thesportsdb transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// OnCircuitStateChange is called on every breaker transition.
	OnCircuitStateChange func(name string, from, to resilience.CircuitState)
}

// Client reads season schedules and standings from TheSportsDB. The API key
// is part of the request path, so every logged URL or error is redacted.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.Group[[]byte]
	// sleep waits between retries; tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "thesportsdb " + r.Method + " " + strings.TrimPrefix(lastPathSegment(r.URL.Path), "/")
				}),
			),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breaker := resilience.NewCircuitBreaker("thesportsdb", cfg.CircuitBreaker)
	breaker.OnStateChange(func(name string, from, to resilience.CircuitState) {
		logger.Warn("circuit breaker state changed", "breaker", name, "from", string(from), "to", string(to))
		if cfg.OnCircuitStateChange != nil {
			cfg.OnCircuitStateChange(name, from, to)
		}
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    breaker,
		sleep:      sleepContext,
	}
}

func (c *Client) FetchSeasonSchedule(ctx context.Context, leagueID, season string) ([]usecase.ExternalScheduleMatch, error) {
	leagueID = strings.TrimSpace(leagueID)
	season = strings.TrimSpace(season)
	if leagueID == "" || season == "" {
		return nil, fmt.Errorf("%w: league id and season are required", usecase.ErrInvalidInput)
	}

	var envelope eventsEnvelope
	if err := c.doJSON(ctx, "/eventsseason.php", url.Values{"id": {leagueID}, "s": {season}}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch season events league=%s season=%s: %w", leagueID, season, err)
	}

	out := make([]usecase.ExternalScheduleMatch, 0, len(envelope.Events))
	for _, item := range envelope.Events {
		out = append(out, usecase.ExternalScheduleMatch{
			SourceEventID: strings.TrimSpace(item.ID.String()),
			Round:         item.Round.Int(),
			HomeTeamName:  strings.TrimSpace(item.HomeTeam),
			AwayTeamName:  strings.TrimSpace(item.AwayTeam),
			Date:          parseEventTime(item.Timestamp, item.Date, item.Time),
			Status:        strings.TrimSpace(item.Status),
			HomeScore:     item.HomeScore.Ptr(),
			AwayScore:     item.AwayScore.Ptr(),
		})
	}
	return out, nil
}

func (c *Client) FetchStandings(ctx context.Context, leagueID, season string) ([]usecase.ExternalStanding, error) {
	leagueID = strings.TrimSpace(leagueID)
	season = strings.TrimSpace(season)
	if leagueID == "" || season == "" {
		return nil, fmt.Errorf("%w: league id and season are required", usecase.ErrInvalidInput)
	}

	var envelope tableEnvelope
	if err := c.doJSON(ctx, "/lookuptable.php", url.Values{"l": {leagueID}, "s": {season}}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch standings league=%s season=%s: %w", leagueID, season, err)
	}

	out := make([]usecase.ExternalStanding, 0, len(envelope.Table))
	for _, item := range envelope.Table {
		out = append(out, usecase.ExternalStanding{
			TeamName:     strings.TrimSpace(item.Team),
			Rank:         item.Rank.Int(),
			Played:       item.Played.Int(),
			Won:          item.Win.Int(),
			Draw:         item.Draw.Int(),
			Lost:         item.Loss.Int(),
			GoalsFor:     item.GoalsFor.Int(),
			GoalsAgainst: item.GoalsAgainst.Int(),
			Points:       item.Points.Int(),
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: thesportsdb api key is not configured", usecase.ErrInvalidInput)
	}
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "thesportsdb circuit breaker rejected request", "state", string(c.breaker.State()))
		return fmt.Errorf("%w: schedule provider circuit open: %w", usecase.ErrRemoteUnavailable, err)
	}

	fullURL := c.baseURL + "/" + url.PathEscape(c.apiKey) + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err, _ := c.flight.Do(path+"?"+query.Encode(), func() ([]byte, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		c.breaker.Record(isCircuitFailure(reqErr))
		return raw, reqErr
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", usecase.ErrRemoteUnavailable, err)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %w", usecase.ErrRemoteUnavailable, crerr.Wrapf(err, "decode thesportsdb payload body=%s", abbreviateBody(raw)))
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %s", c.sanitize(err.Error()))
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errTheSportsDBTransient, c.sanitize(err.Error()))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errTheSportsDBTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errTheSportsDBTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		if err := c.sleep(ctx, time.Duration(attempt+1)*time.Second); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "thesportsdb request failed", "url", c.sanitize(fullURL), "error", lastErr)
	return nil, lastErr
}

func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || c.apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, "/"+c.apiKey+"/", "/REDACTED/")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isCircuitFailure(err error) bool {
	return err != nil && stderrors.Is(err, errTheSportsDBTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func lastPathSegment(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx:]
	}
	return path
}

// parseEventTime prefers the UTC timestamp and falls back to date plus time.
func parseEventTime(timestamp, date, clock string) time.Time {
	timestamp = strings.TrimSpace(timestamp)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if timestamp == "" {
			break
		}
		if parsed, err := time.Parse(layout, timestamp); err == nil {
			return parsed.UTC()
		}
	}

	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}
	}
	clock = strings.TrimSpace(clock)
	if clock != "" {
		clock = strings.TrimSuffix(strings.TrimSuffix(clock, "Z"), "+00:00")
		if parsed, err := time.Parse("2006-01-02 15:04:05", date+" "+clock); err == nil {
			return parsed.UTC()
		}
	}
	if parsed, err := time.Parse(time.DateOnly, date); err == nil {
		return parsed
	}
	return time.Time{}
}
