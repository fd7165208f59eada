package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HighlightlyCallInterval != 300*time.Millisecond {
		t.Fatalf("unexpected call interval: %s", cfg.HighlightlyCallInterval)
	}
	if cfg.HighlightlyAuthHeader != "x-rapidapi-key" {
		t.Fatalf("unexpected auth header: %q", cfg.HighlightlyAuthHeader)
	}
	if cfg.ResolverDateWindowDays != 1 {
		t.Fatalf("unexpected date window: %d", cfg.ResolverDateWindowDays)
	}
	if cfg.ResolverTimezone == nil || cfg.ResolverTimezone.String() != "Asia/Seoul" {
		t.Fatalf("unexpected timezone: %v", cfg.ResolverTimezone)
	}
	if cfg.LogFormat != logging.FormatConsole {
		t.Fatalf("unexpected log format: %s", cfg.LogFormat)
	}
	if len(cfg.ReconcileLeagueIDs) != 1 || cfg.ReconcileLeagueIDs[0] != "4689" {
		t.Fatalf("unexpected league ids: %v", cfg.ReconcileLeagueIDs)
	}
	if !cfg.HighlightlyCircuit.Enabled || cfg.HighlightlyCircuit.FailureThreshold != 5 {
		t.Fatalf("unexpected circuit config: %+v", cfg.HighlightlyCircuit)
	}
	if _, ok := cfg.TeamAliases["Ulsan HD"]; !ok {
		t.Fatalf("expected built-in aliases to be loaded")
	}
}

func TestLoad_ParsesMapsAndAliases(t *testing.T) {
	t.Setenv("APP_ENV", EnvStage)
	t.Setenv("HIGHLIGHTLY_LEAGUE_ID_MAP", "4689:249276, 4822:249277")
	t.Setenv("TEAM_ALIASES", "Gimcheon Sangmu=Sangmu FC")
	t.Setenv("RECONCILE_LEAGUE_IDS", "4689,4822")
	t.Setenv("APP_LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HighlightlyLeagueIDByLeague["4822"] != 249277 {
		t.Fatalf("unexpected league map: %v", cfg.HighlightlyLeagueIDByLeague)
	}
	aliases := cfg.TeamAliases["Gimcheon Sangmu"]
	if len(aliases) == 0 || aliases[len(aliases)-1] != "Sangmu FC" {
		t.Fatalf("expected env alias appended, got %v", aliases)
	}
	if len(cfg.ReconcileLeagueIDs) != 2 {
		t.Fatalf("unexpected league ids: %v", cfg.ReconcileLeagueIDs)
	}
	if cfg.LogFormat != logging.FormatJSON {
		t.Fatalf("unexpected log format: %s", cfg.LogFormat)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"HIGHLIGHTLY_LEAGUE_ID_MAP":         "4689",
		"HIGHLIGHTLY_CALL_INTERVAL":         "soon",
		"RESOLVER_DATE_WINDOW_DAYS":         "-1",
		"TEAM_ALIASES":                      "no-equals",
		"THESPORTSDB_CIRCUIT_FAILURE_COUNT": "0",
		"RESOLVER_TIMEZONE":                 "Mars/Olympus",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestConfig_RequireReportsMissingCredentials(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv(EnvDBURL, "")
	t.Setenv(EnvHighlightlyAPIKey, "")
	t.Setenv(EnvTheSportsDBAPIKey, "sportsdb-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	err = cfg.Require(EnvDBURL, EnvTheSportsDBAPIKey, EnvHighlightlyAPIKey)
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if !strings.Contains(err.Error(), EnvDBURL) || !strings.Contains(err.Error(), EnvHighlightlyAPIKey) {
		t.Fatalf("expected both missing names in error, got %v", err)
	}
	if strings.Contains(err.Error(), EnvTheSportsDBAPIKey) {
		t.Fatalf("configured credential must not be reported: %v", err)
	}

	if err := cfg.Require(EnvTheSportsDBAPIKey); err != nil {
		t.Fatalf("expected no error for configured credential, got %v", err)
	}
}
