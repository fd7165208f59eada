// Package referencefile loads the curated reference table the discrepancy
// report compares against.
package referencefile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/discrepancy"
	"github.com/riskibarqy/kleague-reconciler/internal/usecase"
)

type document struct {
	Entries []discrepancy.ReferenceEntry `json:"entries" validate:"dive"`
}

type Loader struct {
	validator *validator.Validate
}

func NewLoader() *Loader {
	return &Loader{validator: validator.New()}
}

// Load reads either a JSON array of entries or an object with an "entries"
// array.
func (l *Loader) Load(ctx context.Context, path string) ([]discrepancy.ReferenceEntry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: reference file path is required", usecase.ErrInvalidInput)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference file %s: %w", path, err)
	}
	return l.Parse(ctx, raw)
}

func (l *Loader) Parse(ctx context.Context, raw []byte) ([]discrepancy.ReferenceEntry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: reference file is empty", usecase.ErrInvalidInput)
	}

	var doc document
	if raw[0] == '[' {
		if err := sonic.Unmarshal(raw, &doc.Entries); err != nil {
			return nil, fmt.Errorf("%w: decode reference entries: %v", usecase.ErrInvalidInput, err)
		}
	} else {
		if err := sonic.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%w: decode reference document: %v", usecase.ErrInvalidInput, err)
		}
	}

	for i := range doc.Entries {
		entry := &doc.Entries[i]
		entry.LeagueID = strings.TrimSpace(entry.LeagueID)
		entry.PlayerName = strings.TrimSpace(entry.PlayerName)
		entry.TeamName = strings.TrimSpace(entry.TeamName)
		if metric, ok := discrepancy.ParseMetric(string(entry.Metric)); ok {
			entry.Metric = metric
		}
	}

	if err := l.validator.StructCtx(ctx, doc); err != nil {
		return nil, fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return doc.Entries, nil
}
