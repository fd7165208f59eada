package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/namematch"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/resilience"
)

// Config stores runtime configuration for the reconciler.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	LogLevel                logging.Level
	LogFormat               logging.Format
	DBURL                   string
	DBDisablePreparedBinary bool

	TheSportsDBBaseURL    string
	TheSportsDBAPIKey     string
	TheSportsDBTimeout    time.Duration
	TheSportsDBMaxRetries int
	TheSportsDBCircuit    resilience.CircuitBreakerConfig

	HighlightlyBaseURL          string
	HighlightlyAPIKey           string
	HighlightlyAuthHeader       string
	HighlightlyTimeout          time.Duration
	HighlightlyMaxRetries       int
	HighlightlyCallInterval     time.Duration
	HighlightlyPageSize         int
	HighlightlyCircuit          resilience.CircuitBreakerConfig
	HighlightlyLeagueIDByLeague map[string]int64

	ReconcileLeagueIDs     []string
	ReconcileSeason        string
	ResolverDateWindowDays int
	ResolverTimezone       *time.Location
	TeamAliases            map[string][]string
	ReferenceFile          string
	DiscrepancyTolerance   int
	StandingsGoalTolerance int

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	MetricsPushgatewayURL      string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first without overriding variables already set.
// Credentials are not checked here; commands call Require for the ones they
// need.
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "kleague-reconciler"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                   parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:                  logging.ParseFormat(getEnv("APP_LOG_FORMAT", string(logging.FormatConsole))),
		DBURL:                      strings.TrimSpace(getEnv(EnvDBURL, "")),
		TheSportsDBBaseURL:         strings.TrimSpace(getEnv("THESPORTSDB_BASE_URL", "https://www.thesportsdb.com/api/v1/json")),
		TheSportsDBAPIKey:          strings.TrimSpace(getEnv(EnvTheSportsDBAPIKey, "")),
		HighlightlyBaseURL:         strings.TrimSpace(getEnv("HIGHLIGHTLY_BASE_URL", "https://soccer.highlightly.net")),
		HighlightlyAPIKey:          strings.TrimSpace(getEnv(EnvHighlightlyAPIKey, "")),
		HighlightlyAuthHeader:      strings.TrimSpace(getEnv("HIGHLIGHTLY_AUTH_HEADER", "x-rapidapi-key")),
		ReconcileLeagueIDs:         splitCSV(getEnv("RECONCILE_LEAGUE_IDS", "4689")),
		ReconcileSeason:            strings.TrimSpace(getEnv("RECONCILE_SEASON", "2025")),
		ReferenceFile:              strings.TrimSpace(getEnv(EnvReferenceFile, "")),
		UptraceDSN:                 strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		MetricsPushgatewayURL:      strings.TrimSpace(getEnv("METRICS_PUSHGATEWAY_URL", "")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	if len(cfg.ReconcileLeagueIDs) == 0 {
		return Config{}, fmt.Errorf("RECONCILE_LEAGUE_IDS cannot be empty")
	}
	if cfg.ReconcileSeason == "" {
		return Config{}, fmt.Errorf("RECONCILE_SEASON cannot be empty")
	}

	if cfg.DBDisablePreparedBinary, err = strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true")); err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	if cfg.TheSportsDBTimeout, err = getEnvAsPositiveDuration("THESPORTSDB_TIMEOUT", "20s"); err != nil {
		return Config{}, err
	}
	if cfg.TheSportsDBMaxRetries, err = getEnvAsInt("THESPORTSDB_MAX_RETRIES", 2); err != nil {
		return Config{}, fmt.Errorf("parse THESPORTSDB_MAX_RETRIES: %w", err)
	}
	if cfg.TheSportsDBMaxRetries < 0 {
		return Config{}, fmt.Errorf("THESPORTSDB_MAX_RETRIES must be >= 0")
	}
	if cfg.TheSportsDBCircuit, err = loadCircuit("THESPORTSDB"); err != nil {
		return Config{}, err
	}

	if cfg.HighlightlyAuthHeader == "" {
		return Config{}, fmt.Errorf("HIGHLIGHTLY_AUTH_HEADER cannot be empty")
	}
	if cfg.HighlightlyTimeout, err = getEnvAsPositiveDuration("HIGHLIGHTLY_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}
	if cfg.HighlightlyMaxRetries, err = getEnvAsInt("HIGHLIGHTLY_MAX_RETRIES", 0); err != nil {
		return Config{}, fmt.Errorf("parse HIGHLIGHTLY_MAX_RETRIES: %w", err)
	}
	if cfg.HighlightlyMaxRetries < 0 {
		return Config{}, fmt.Errorf("HIGHLIGHTLY_MAX_RETRIES must be >= 0")
	}
	if cfg.HighlightlyCallInterval, err = time.ParseDuration(getEnv("HIGHLIGHTLY_CALL_INTERVAL", "300ms")); err != nil {
		return Config{}, fmt.Errorf("parse HIGHLIGHTLY_CALL_INTERVAL: %w", err)
	}
	if cfg.HighlightlyCallInterval < 0 {
		return Config{}, fmt.Errorf("HIGHLIGHTLY_CALL_INTERVAL must be >= 0")
	}
	if cfg.HighlightlyPageSize, err = getEnvAsInt("HIGHLIGHTLY_PAGE_SIZE", 100); err != nil {
		return Config{}, fmt.Errorf("parse HIGHLIGHTLY_PAGE_SIZE: %w", err)
	}
	if cfg.HighlightlyPageSize < 1 {
		return Config{}, fmt.Errorf("HIGHLIGHTLY_PAGE_SIZE must be >= 1")
	}
	if cfg.HighlightlyCircuit, err = loadCircuit("HIGHLIGHTLY"); err != nil {
		return Config{}, err
	}
	if cfg.HighlightlyLeagueIDByLeague, err = parseIDMap(getEnv("HIGHLIGHTLY_LEAGUE_ID_MAP", "")); err != nil {
		return Config{}, fmt.Errorf("parse HIGHLIGHTLY_LEAGUE_ID_MAP: %w", err)
	}

	if cfg.ResolverDateWindowDays, err = getEnvAsInt("RESOLVER_DATE_WINDOW_DAYS", 1); err != nil {
		return Config{}, fmt.Errorf("parse RESOLVER_DATE_WINDOW_DAYS: %w", err)
	}
	if cfg.ResolverDateWindowDays < 0 {
		return Config{}, fmt.Errorf("RESOLVER_DATE_WINDOW_DAYS must be >= 0")
	}
	if cfg.ResolverTimezone, err = time.LoadLocation(getEnv("RESOLVER_TIMEZONE", "Asia/Seoul")); err != nil {
		return Config{}, fmt.Errorf("parse RESOLVER_TIMEZONE: %w", err)
	}
	extraAliases, err := namematch.ParseAliases(getEnv("TEAM_ALIASES", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse TEAM_ALIASES: %w", err)
	}
	cfg.TeamAliases = namematch.MergeAliases(namematch.KLeagueAliases(), extraAliases)

	if cfg.DiscrepancyTolerance, err = getEnvAsInt("DISCREPANCY_TOLERANCE", 0); err != nil {
		return Config{}, fmt.Errorf("parse DISCREPANCY_TOLERANCE: %w", err)
	}
	if cfg.DiscrepancyTolerance < 0 {
		return Config{}, fmt.Errorf("DISCREPANCY_TOLERANCE must be >= 0")
	}
	if cfg.StandingsGoalTolerance, err = getEnvAsInt("STANDINGS_GOAL_TOLERANCE", 0); err != nil {
		return Config{}, fmt.Errorf("parse STANDINGS_GOAL_TOLERANCE: %w", err)
	}
	if cfg.StandingsGoalTolerance < 0 {
		return Config{}, fmt.Errorf("STANDINGS_GOAL_TOLERANCE must be >= 0")
	}

	if cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false")); err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false")); err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errorsIsNotExist(err) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

func loadCircuit(prefix string) (resilience.CircuitBreakerConfig, error) {
	enabled, err := strconv.ParseBool(getEnv(prefix+"_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_CIRCUIT_ENABLED: %w", prefix, err)
	}
	failures, err := getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if failures < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	openTimeout, err := getEnvAsPositiveDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", "30s")
	if err != nil {
		return resilience.CircuitBreakerConfig{}, err
	}
	halfOpen, err := getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_CIRCUIT_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if halfOpen < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}

	return resilience.CircuitBreakerConfig{
		Enabled:          enabled,
		FailureThreshold: failures,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpen,
	}, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
