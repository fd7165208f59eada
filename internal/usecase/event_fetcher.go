package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/matchevent"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/ratelimit"
	"go.opentelemetry.io/otel/attribute"
)

// EventFetcher loads the in-match events of one external match. Every remote
// call waits on the gate first.
type EventFetcher struct {
	provider EventProvider
	gate     ratelimit.Gate
	logger   *logging.Logger
}

func NewEventFetcher(provider EventProvider, gate ratelimit.Gate, logger *logging.Logger) *EventFetcher {
	if logger == nil {
		logger = logging.Default()
	}
	if gate == nil {
		gate = ratelimit.Unlimited()
	}
	return &EventFetcher{provider: provider, gate: gate, logger: logger}
}

// Fetch returns the events of externalMatchID ordered by minute, extra minute
// and the provider's own order. Provider failures are returned wrapped in
// ErrRemoteUnavailable.
func (f *EventFetcher) Fetch(ctx context.Context, externalMatchID string) ([]matchevent.MatchEvent, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventFetcher.Fetch",
		attribute.String("external_match.id", externalMatchID),
	)
	defer span.End()

	externalMatchID = strings.TrimSpace(externalMatchID)
	if externalMatchID == "" {
		return nil, fmt.Errorf("%w: external match id is required", ErrInvalidInput)
	}

	if err := f.gate.Wait(ctx); err != nil {
		return nil, err
	}

	raw, err := f.provider.FetchEvents(ctx, externalMatchID)
	if err != nil {
		return nil, fmt.Errorf("fetch events external_match=%s: %w", externalMatchID, err)
	}

	events := NormalizeEvents(externalMatchID, raw)
	f.logger.DebugContext(ctx, "match events fetched",
		"external_match_id", externalMatchID,
		"events", len(events),
	)
	return events, nil
}

// NormalizeEvents maps provider events onto MatchEvent, turning assist
// sentinels into absent assists, and sorts them stably by minute.
func NormalizeEvents(matchID string, raw []ExternalEvent) []matchevent.MatchEvent {
	out := make([]matchevent.MatchEvent, 0, len(raw))
	for _, item := range raw {
		eventType, card := matchevent.ParseType(item.Type)

		assistName := ""
		if item.Assist != nil {
			assistName = matchevent.AssistName(*item.Assist)
		}

		out = append(out, matchevent.MatchEvent{
			MatchID:             matchID,
			Type:                eventType,
			Card:                card,
			Detail:              strings.TrimSpace(item.Type),
			Minute:              item.Minute,
			ExtraMinute:         item.ExtraMinute,
			ScoringPlayerID:     positiveID(item.PlayerID),
			ScoringPlayerName:   strings.TrimSpace(item.PlayerName),
			AssistingPlayerID:   matchevent.AssistID(item.AssistingPlayerID),
			AssistingPlayerName: assistName,
			TeamRef:             strings.TrimSpace(item.TeamName),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Minute != out[j].Minute {
			return out[i].Minute < out[j].Minute
		}
		return out[i].ExtraMinute < out[j].ExtraMinute
	})
	return out
}

func positiveID(id int64) int64 {
	if id < 0 {
		return 0
	}
	return id
}
