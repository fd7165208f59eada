package app

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/kleague-reconciler/external/highlightly"
	"github.com/riskibarqy/kleague-reconciler/external/thesportsdb"
	"github.com/riskibarqy/kleague-reconciler/internal/config"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/leaguestanding"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/match"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/playerstats"
	"github.com/riskibarqy/kleague-reconciler/internal/infrastructure/referencefile"
	cacherepo "github.com/riskibarqy/kleague-reconciler/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/kleague-reconciler/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/kleague-reconciler/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/kleague-reconciler/internal/metrics"
	basecache "github.com/riskibarqy/kleague-reconciler/internal/platform/cache"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/namematch"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/ratelimit"
	"github.com/riskibarqy/kleague-reconciler/internal/usecase"
)

// Container holds every component of one reconciler process. Nothing is
// global; commands receive what they need from here.
type Container struct {
	Config  config.Config
	Logger  *logging.Logger
	Metrics *metrics.Service
	DB      *sqlx.DB

	Matches   match.Repository
	Stats     playerstats.Repository
	Standings leaguestanding.Repository

	Seeder         *usecase.ScheduleSeeder
	Resolver       *usecase.IdentityResolver
	Fetcher        *usecase.EventFetcher
	Aggregation    *usecase.AggregationService
	Runner         *usecase.ReconcileRunner
	Reporter       *usecase.DiscrepancyReporter
	StandingsCheck *usecase.StandingsSanityCheck
	References     *referencefile.Loader
}

// Build wires the container from cfg. Without DB_URL the repositories are
// in-memory, which only makes sense for dry runs; commands that persist
// anything require DB_URL before calling Build.
func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics.NewService(nil),
		References: referencefile.NewLoader(),
	}

	if cfg.DBURL != "" {
		db, err := openDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		c.DB = db
		c.Matches = postgres.NewMatchRepository(db)
		c.Stats = postgres.NewPlayerStatsRepository(db)
		c.Standings = postgres.NewLeagueStandingRepository(db)
	} else {
		logger.Warn("DB_URL not set, using in-memory repositories")
		c.Matches = memory.NewMatchRepository(nil)
		c.Stats = memory.NewPlayerStatsRepository()
		c.Standings = memory.NewLeagueStandingRepository()
	}
	c.Stats = cacherepo.NewPlayerStatsRepository(c.Stats, basecache.NewStore[[]playerstats.PlayerSeasonStats](0))

	scheduleClient := thesportsdb.NewClient(thesportsdb.ClientConfig{
		BaseURL:              cfg.TheSportsDBBaseURL,
		APIKey:               cfg.TheSportsDBAPIKey,
		Timeout:              cfg.TheSportsDBTimeout,
		MaxRetries:           cfg.TheSportsDBMaxRetries,
		Logger:               logger,
		CircuitBreaker:       cfg.TheSportsDBCircuit,
		OnCircuitStateChange: c.Metrics.ObserveCircuitState,
	})
	eventClient := highlightly.NewClient(highlightly.ClientConfig{
		BaseURL:              cfg.HighlightlyBaseURL,
		APIKey:               cfg.HighlightlyAPIKey,
		AuthHeader:           cfg.HighlightlyAuthHeader,
		Timeout:              cfg.HighlightlyTimeout,
		MaxRetries:           cfg.HighlightlyMaxRetries,
		Logger:               logger,
		CircuitBreaker:       cfg.HighlightlyCircuit,
		OnCircuitStateChange: c.Metrics.ObserveCircuitState,
	})

	// One gate paces every event API call of the process, listing pages
	// and event fetches alike.
	gate := ratelimit.NewFixedInterval(cfg.HighlightlyCallInterval)
	matcher := namematch.NewMatcher(cfg.TeamAliases)

	c.Seeder = usecase.NewScheduleSeeder(scheduleClient, c.Matches, cfg.ResolverTimezone, logger)
	c.Resolver = usecase.NewIdentityResolver(eventClient, c.Matches, gate, matcher, usecase.IdentityResolverConfig{
		LeagueRefByLeague: cfg.HighlightlyLeagueIDByLeague,
		DateWindowDays:    cfg.ResolverDateWindowDays,
		Location:          cfg.ResolverTimezone,
		PageSize:          cfg.HighlightlyPageSize,
	}, logger)
	c.Fetcher = usecase.NewEventFetcher(eventClient, gate, logger)
	c.Aggregation = usecase.NewAggregationService(c.Stats, logger)
	c.Runner = usecase.NewReconcileRunner(c.Matches, c.Resolver, c.Fetcher, c.Aggregation, c.Metrics, logger)
	c.Reporter = usecase.NewDiscrepancyReporter(c.Stats, matcher, cfg.DiscrepancyTolerance, logger)
	c.StandingsCheck = usecase.NewStandingsSanityCheck(scheduleClient, c.Stats, c.Standings, matcher, cfg.StandingsGoalTolerance, logger)

	return c, nil
}

// Close releases the database pool.
func (c *Container) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
