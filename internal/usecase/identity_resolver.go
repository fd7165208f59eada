package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/kleague-reconciler/internal/domain/match"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/cache"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/namematch"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/ratelimit"
	"go.opentelemetry.io/otel/attribute"
)

type ResolutionStatus string

const (
	ResolutionResolved   ResolutionStatus = "resolved"
	ResolutionUnresolved ResolutionStatus = "unresolved"
	ResolutionAmbiguous  ResolutionStatus = "ambiguous"
)

const defaultListingPageSize = 100

// Resolution is the outcome of matching one local match against the event
// source listing. Candidates lists the tied ids of an ambiguous resolution.
type Resolution struct {
	MatchID         string
	Status          ResolutionStatus
	ExternalMatchID string
	Score           float64
	Candidates      []string
}

type IdentityResolverConfig struct {
	// LeagueRefByLeague maps schedule league ids onto event source league ids.
	LeagueRefByLeague map[string]int64
	DateWindowDays    int
	// Location is the local calendar used to compare match days.
	Location *time.Location
	PageSize int
}

type IdentityResolver struct {
	provider EventProvider
	matches  match.Repository
	gate     ratelimit.Gate
	matcher  *namematch.Matcher
	listings *cache.Store[[]ExternalMatch]
	cfg      IdentityResolverConfig
	logger   *logging.Logger
}

func NewIdentityResolver(
	provider EventProvider,
	matches match.Repository,
	gate ratelimit.Gate,
	matcher *namematch.Matcher,
	cfg IdentityResolverConfig,
	logger *logging.Logger,
) *IdentityResolver {
	if logger == nil {
		logger = logging.Default()
	}
	if gate == nil {
		gate = ratelimit.Unlimited()
	}
	if cfg.DateWindowDays < 0 {
		cfg.DateWindowDays = 0
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultListingPageSize
	}

	return &IdentityResolver{
		provider: provider,
		matches:  matches,
		gate:     gate,
		matcher:  matcher,
		// Listings are fetched once per process.
		listings: cache.NewStore[[]ExternalMatch](0),
		cfg:      cfg,
		logger:   logger,
	}
}

// Resolve finds the external id of item without writing anything. An
// ambiguous outcome is returned together with an ErrAmbiguousIdentity error.
func (r *IdentityResolver) Resolve(ctx context.Context, item match.Match) (Resolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IdentityResolver.Resolve",
		attribute.String("match.id", item.ID),
	)
	defer span.End()

	if item.IsResolved() {
		return Resolution{
			MatchID:         item.ID,
			Status:          ResolutionResolved,
			ExternalMatchID: item.ExternalMatchID,
			Score:           2,
		}, nil
	}

	candidates, err := r.listing(ctx, item.LeagueID, item.Season)
	if err != nil {
		return Resolution{MatchID: item.ID, Status: ResolutionUnresolved}, fmt.Errorf("list candidates match=%s: %w", item.ID, err)
	}

	res := SelectCandidate(item, candidates, r.matcher, r.cfg.DateWindowDays, r.cfg.Location)
	if res.Status == ResolutionAmbiguous {
		return res, fmt.Errorf("%w: match=%s candidates=%s", ErrAmbiguousIdentity, item.ID, strings.Join(res.Candidates, ","))
	}
	return res, nil
}

// ResolveAndStore resolves item and writes a new external id back to the
// match store.
func (r *IdentityResolver) ResolveAndStore(ctx context.Context, item match.Match) (Resolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IdentityResolver.ResolveAndStore")
	defer span.End()

	res, err := r.Resolve(ctx, item)
	if err != nil {
		return res, err
	}
	if res.Status != ResolutionResolved || item.IsResolved() {
		return res, nil
	}

	if err := r.matches.SetExternalMatchID(ctx, item.ID, res.ExternalMatchID); err != nil {
		return res, fmt.Errorf("store external id match=%s: %w", item.ID, err)
	}
	r.logger.DebugContext(ctx, "match resolved",
		"match_id", item.ID,
		"external_match_id", res.ExternalMatchID,
		"score", res.Score,
	)
	return res, nil
}

func (r *IdentityResolver) listing(ctx context.Context, leagueID, season string) ([]ExternalMatch, error) {
	leagueRef, ok := r.cfg.LeagueRefByLeague[strings.TrimSpace(leagueID)]
	if !ok || leagueRef <= 0 {
		return nil, fmt.Errorf("%w: no event source league mapped for league=%s", ErrInvalidInput, leagueID)
	}

	key := "listing:" + strconv.FormatInt(leagueRef, 10) + ":" + strings.TrimSpace(season)
	return r.listings.GetOrLoad(ctx, key, func(ctx context.Context) ([]ExternalMatch, error) {
		return r.fetchListing(ctx, leagueRef, season)
	})
}

// fetchListing pages through the league-season listing. A known Total drives
// the loop; the short-page test only applies when the source omits it. Pages
// that add no unseen ids end the loop so a source ignoring offset cannot spin.
func (r *IdentityResolver) fetchListing(ctx context.Context, leagueRef int64, season string) ([]ExternalMatch, error) {
	out := make([]ExternalMatch, 0, r.cfg.PageSize)
	seen := make(map[string]struct{}, r.cfg.PageSize)
	offset := 0
	total := 0
	for {
		if err := r.gate.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := r.provider.ListMatches(ctx, leagueRef, season, offset, r.cfg.PageSize)
		if err != nil {
			return nil, fmt.Errorf("list matches league_ref=%d offset=%d: %w", leagueRef, offset, err)
		}
		if page.Total > 0 {
			total = page.Total
		}
		if len(page.Matches) == 0 {
			break
		}

		added := 0
		for _, item := range page.Matches {
			if _, ok := seen[item.ID]; ok {
				continue
			}
			seen[item.ID] = struct{}{}
			out = append(out, item)
			added++
		}
		offset += len(page.Matches)

		if added == 0 {
			r.logger.WarnContext(ctx, "event source listing made no progress",
				"league_ref", leagueRef,
				"season", season,
				"offset", offset,
			)
			break
		}
		if total > 0 {
			if offset >= total {
				break
			}
			continue
		}
		if len(page.Matches) < r.cfg.PageSize {
			break
		}
	}

	if total > 0 && len(out) < total {
		r.logger.WarnContext(ctx, "event source listing shorter than reported total",
			"league_ref", leagueRef,
			"season", season,
			"matches", len(out),
			"total", total,
		)
	}
	r.logger.InfoContext(ctx, "event source listing loaded",
		"league_ref", leagueRef,
		"season", season,
		"matches", len(out),
	)
	return out, nil
}

type scoredCandidate struct {
	id        string
	exactDate bool
	score     float64
}

const scoreEpsilon = 1e-9

// SelectCandidate ranks candidates for item. A candidate is eligible when its
// day in loc is within windowDays of the match day and both team names match.
// Exact-day candidates rank first, then higher combined name similarity.
// Ties at the top make the resolution ambiguous.
func SelectCandidate(item match.Match, candidates []ExternalMatch, matcher *namematch.Matcher, windowDays int, loc *time.Location) Resolution {
	res := Resolution{MatchID: item.ID, Status: ResolutionUnresolved}
	if item.Date.IsZero() {
		return res
	}

	localDay := match.Day(item.Date, time.UTC)
	eligible := make([]scoredCandidate, 0, 4)
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate.ID) == "" || candidate.Date.IsZero() {
			continue
		}
		days := match.DaysBetween(localDay, match.Day(candidate.Date, loc))
		if days > windowDays {
			continue
		}

		home := matcher.Compare(item.HomeTeamName, candidate.HomeTeamName)
		if !home.Match {
			continue
		}
		away := matcher.Compare(item.AwayTeamName, candidate.AwayTeamName)
		if !away.Match {
			continue
		}

		eligible = append(eligible, scoredCandidate{
			id:        candidate.ID,
			exactDate: days == 0,
			score:     home.Score + away.Score,
		})
	}
	if len(eligible) == 0 {
		return res
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].exactDate != eligible[j].exactDate {
			return eligible[i].exactDate
		}
		if diff := eligible[i].score - eligible[j].score; diff > scoreEpsilon || diff < -scoreEpsilon {
			return diff > 0
		}
		return eligible[i].id < eligible[j].id
	})

	top := eligible[0]
	tied := []string{top.id}
	for _, candidate := range eligible[1:] {
		if candidate.exactDate != top.exactDate {
			break
		}
		if diff := top.score - candidate.score; diff > scoreEpsilon {
			break
		}
		if candidate.id != top.id {
			tied = append(tied, candidate.id)
		}
	}

	res.Score = top.score
	if len(tied) > 1 {
		res.Status = ResolutionAmbiguous
		res.Candidates = tied
		return res
	}

	res.Status = ResolutionResolved
	res.ExternalMatchID = top.id
	return res
}
