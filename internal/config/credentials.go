package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredential is returned before any network or store access when a
// required secret is not configured.
var ErrMissingCredential = errors.New("missing credential")

const (
	EnvDBURL             = "DB_URL"
	EnvTheSportsDBAPIKey = "THESPORTSDB_API_KEY"
	EnvHighlightlyAPIKey = "HIGHLIGHTLY_API_KEY"
	EnvReferenceFile     = "REFERENCE_FILE"
)

// Require reports every listed variable that is empty in cfg.
func (c Config) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if strings.TrimSpace(c.lookup(name)) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingCredential, strings.Join(missing, ", "))
}

func (c Config) lookup(name string) string {
	switch name {
	case EnvDBURL:
		return c.DBURL
	case EnvTheSportsDBAPIKey:
		return c.TheSportsDBAPIKey
	case EnvHighlightlyAPIKey:
		return c.HighlightlyAPIKey
	case EnvReferenceFile:
		return c.ReferenceFile
	default:
		return ""
	}
}
