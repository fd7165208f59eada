package app

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/kleague-reconciler/internal/config"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const maxTracedQueryLength = 512

var queryWhitespaceRegex = regexp.MustCompile(`\s+`)

func openDB(ctx context.Context, cfg config.Config, logger *logging.Logger) (*sqlx.DB, error) {
	target, err := parseDatabaseTarget(cfg.DBURL)
	if err != nil {
		return nil, err
	}
	dsn := target.dsn(cfg.ServiceName, cfg.DBDisablePreparedBinary)

	opts := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatQueryForTrace),
	}
	if target.name != "" {
		opts = append(opts, otelsql.WithDBName(target.name))
	}

	db, err := otelsqlx.Open("postgres", dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	// Runs are sequential; a small pool covers the fold transaction plus reads.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s: %w", target.redacted(), err)
	}
	logger.Info("postgres connected", "target", target.redacted(), "db_name", target.name)
	return db, nil
}

// databaseTarget is a parsed postgres:// URL. Key/value DSNs are not
// accepted; DB_URL is always a URL for Supabase and local setups.
type databaseTarget struct {
	url  *url.URL
	name string
}

func parseDatabaseTarget(raw string) (databaseTarget, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return databaseTarget{}, fmt.Errorf("parse DB_URL: %w", err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return databaseTarget{}, fmt.Errorf("parse DB_URL: unsupported scheme %q", parsed.Scheme)
	}
	return databaseTarget{
		url:  parsed,
		name: strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")),
	}, nil
}

// dsn tags the connection with the service name so reconciler sessions are
// visible in pg_stat_activity. Explicit query values always win.
func (t databaseTarget) dsn(serviceName string, disablePreparedBinary bool) string {
	out := *t.url
	query := out.Query()
	if name := strings.TrimSpace(serviceName); name != "" && query.Get("application_name") == "" {
		query.Set("application_name", name)
	}
	if disablePreparedBinary && query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
	}
	out.RawQuery = query.Encode()
	return out.String()
}

func (t databaseTarget) redacted() string {
	return t.url.Redacted()
}

// formatQueryForTrace collapses whitespace and folds multi-row VALUES lists
// into their first tuple plus a row count, so chunked ledger and stats
// upserts keep their ON CONFLICT clause inside the traced length.
func formatQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = foldValueRows(normalized)
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}

func foldValueRows(query string) string {
	const marker = " VALUES "
	idx := strings.Index(strings.ToUpper(query), marker)
	if idx < 0 {
		return query
	}
	start := idx + len(marker)

	rows := 0
	firstEnd := -1
	end := start
	for end < len(query) && query[end] == '(' {
		depth := 0
		closed := -1
		for i := end; i < len(query); i++ {
			switch query[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 {
				closed = i
				break
			}
		}
		if closed < 0 {
			return query
		}
		rows++
		if firstEnd < 0 {
			firstEnd = closed + 1
		}
		end = closed + 1
		if strings.HasPrefix(query[end:], ", (") {
			end += 2
			continue
		}
		break
	}
	if rows < 2 {
		return query
	}
	return query[:firstEnd] + " /* " + strconv.Itoa(rows) + " rows */" + query[end:]
}
