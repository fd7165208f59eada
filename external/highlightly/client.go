package highlightly

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/resilience"
	"github.com/riskibarqy/kleague-reconciler/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL    = "https://soccer.highlightly.net"
	defaultAuthHeader = "x-rapidapi-key"
	defaultTimeout    = 15 * time.Second
	maxPayloadSize    = 6 << 20
)

var errHighlightlyTransient = crerr.New("highlightly transient failure")

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	BaseURL        string
	APIKey         string
	AuthHeader     string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// OnCircuitStateChange is called on every breaker transition.
	OnCircuitStateChange func(name string, from, to resilience.CircuitState)
}

// Client reads match listings and match events from Highlightly. It does no
// pacing of its own; callers wait on their rate gate before each call.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	apiKey     string
	authHeader string
	timeout    time.Duration
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "kleague-reconciler",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxPayloadSize,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	authHeader := strings.TrimSpace(cfg.AuthHeader)
	if authHeader == "" {
		authHeader = defaultAuthHeader
	}

	breaker := resilience.NewCircuitBreaker("highlightly", cfg.CircuitBreaker)
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
		authHeader: authHeader,
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    breaker,
		sleep:      sleepContext,
	}
}

func (c *Client) ListMatches(ctx context.Context, leagueRefID int64, season string, offset, limit int) (usecase.ExternalMatchPage, error) {
	if leagueRefID <= 0 {
		return usecase.ExternalMatchPage{}, fmt.Errorf("%w: league id must be greater than zero", usecase.ErrInvalidInput)
	}
	query := url.Values{}
	query.Set("leagueId", strconv.FormatInt(leagueRefID, 10))
	query.Set("season", strings.TrimSpace(season))
	query.Set("offset", strconv.Itoa(max(offset, 0)))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var envelope matchesEnvelope
	if err := c.doJSON(ctx, "/matches", query, &envelope); err != nil {
		return usecase.ExternalMatchPage{}, fmt.Errorf("list matches league=%d season=%s offset=%d: %w", leagueRefID, season, offset, err)
	}

	page := usecase.ExternalMatchPage{
		Matches: make([]usecase.ExternalMatch, 0, len(envelope.Data)),
		Total:   envelope.Pagination.TotalCount,
	}
	for _, item := range envelope.Data {
		id := strings.TrimSpace(item.ID.String())
		if id == "" {
			continue
		}
		page.Matches = append(page.Matches, usecase.ExternalMatch{
			ID:           id,
			Date:         parseMatchDate(item.Date),
			HomeTeamName: strings.TrimSpace(item.HomeTeam.Name),
			AwayTeamName: strings.TrimSpace(item.AwayTeam.Name),
			Status:       strings.TrimSpace(item.State.Description),
		})
	}
	return page, nil
}

func (c *Client) FetchEvents(ctx context.Context, externalMatchID string) ([]usecase.ExternalEvent, error) {
	externalMatchID = strings.TrimSpace(externalMatchID)
	if externalMatchID == "" {
		return nil, fmt.Errorf("%w: external match id is required", usecase.ErrInvalidInput)
	}

	var items []eventItem
	if err := c.doJSON(ctx, "/events/"+url.PathEscape(externalMatchID), nil, &items); err != nil {
		return nil, fmt.Errorf("fetch events match=%s: %w", externalMatchID, err)
	}

	out := make([]usecase.ExternalEvent, 0, len(items))
	for _, item := range items {
		out = append(out, usecase.ExternalEvent{
			Type:              strings.TrimSpace(item.Type),
			Minute:            item.Time.Minute,
			ExtraMinute:       item.Time.Extra,
			PlayerID:          item.PlayerID.Int64(),
			PlayerName:        strings.TrimSpace(item.Player),
			AssistingPlayerID: item.AssistingPlayerID.Int64(),
			Assist:            item.Assist,
			TeamName:          strings.TrimSpace(item.Team.Name),
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: highlightly api key is not configured", usecase.ErrInvalidInput)
	}
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "highlightly circuit breaker rejected request", "state", string(c.breaker.State()))
		return fmt.Errorf("%w: event provider circuit open: %w", usecase.ErrRemoteUnavailable, err)
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err := c.executeRequest(ctx, fullURL)
	c.breaker.Record(isCircuitFailure(err))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", usecase.ErrRemoteUnavailable, err)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %w", usecase.ErrRemoteUnavailable, crerr.Wrapf(err, "decode highlightly payload body=%s", abbreviateBody(raw)))
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		status, body, err := c.do(ctx, fullURL)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: send request: %s", errHighlightlyTransient, c.sanitize(err.Error()))
		case status >= 200 && status < 300:
			return body, nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: provider status=%d body=%s", errHighlightlyTransient, status, abbreviateBody(body))
		default:
			return nil, fmt.Errorf("provider status=%d body=%s", status, abbreviateBody(body))
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
	c.logger.WarnContext(ctx, "highlightly request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, fullURL string) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "application/json")
	req.Header.Set(c.authHeader, c.apiKey)

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, err
	}

	// The response buffer is released on return.
	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, nil
}

func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || c.apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, c.apiKey, "REDACTED")
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
	return err != nil && stderrors.Is(err, errHighlightlyTransient)
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func parseMatchDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
