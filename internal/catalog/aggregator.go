package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lnreader/pkg/logger"
)

// Aggregator reads several plugin repositories and merges them into one
// catalogue.
type Aggregator struct {
	Sources []Source
}

func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{Sources: sources}
}

// Key identifies the aggregated catalogue in the cache.
func (a *Aggregator) Key() string {
	names := make([]string, 0, len(a.Sources))
	for _, s := range a.Sources {
		names = append(names, s.Name())
	}
	return strings.Join(names, ",")
}

// FetchAll fetches every source in order. The first entry seen for a plugin
// id wins, so the primary repository shadows the extra ones. A failing
// source is logged and skipped; FetchAll only fails when all of them do.
func (a *Aggregator) FetchAll(ctx context.Context) ([]RawPlugin, error) {
	if len(a.Sources) == 0 {
		return nil, errors.New("no plugin repositories configured")
	}

	var (
		out  []RawPlugin
		errs []error
		seen = make(map[string]struct{})
	)

	for _, src := range a.Sources {
		logger.Info.Printf("[catalog] fetching %s", src.Name())
		plugins, err := src.FetchAll(ctx)
		if err != nil {
			logger.Warning.Printf("[catalog] repository %s error: %v", src.Name(), err)
			errs = append(errs, err)
			continue
		}

		for _, p := range plugins {
			id := strings.TrimSpace(p.ID)
			if id != "" {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
			}
			out = append(out, p)
		}
	}

	if len(errs) == len(a.Sources) {
		return nil, fmt.Errorf("fetch plugin repositories: %w", errors.Join(errs...))
	}
	return out, nil
}
