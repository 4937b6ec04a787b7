package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	synchub "lnreader/internal/sync"
	"lnreader/pkg/logger"
	"lnreader/pkg/models"
)

// Fetcher is what the service refreshes from; *Aggregator implements it.
type Fetcher interface {
	Key() string
	FetchAll(ctx context.Context) ([]RawPlugin, error)
}

// Publisher receives catalogue change events; *sync.Hub implements it.
type Publisher interface {
	BroadcastJSON(v any)
}

// Service serves the plugin catalogue from memory, falling back to the
// sqlite cache and refreshing from the repositories once the TTL expires.
type Service struct {
	Fetcher   Fetcher
	Repo      *Repo     // optional
	Publisher Publisher // optional
	TTL       time.Duration

	now func() time.Time

	mu   sync.Mutex
	snap *Snapshot
}

func NewService(fetcher Fetcher, repo *Repo, pub Publisher, ttl time.Duration) *Service {
	return &Service{
		Fetcher:   fetcher,
		Repo:      repo,
		Publisher: pub,
		TTL:       ttl,
		now:       time.Now,
	}
}

// Raw returns the current catalogue. When a refresh fails but an older
// snapshot exists, the stale snapshot is served.
func (s *Service) Raw(ctx context.Context) ([]RawPlugin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap == nil && s.Repo != nil {
		snap, err := s.Repo.Get(ctx, s.Fetcher.Key())
		if err != nil {
			logger.Warning.Printf("[catalog] read cache: %v", err)
		}
		s.snap = snap
	}

	if s.snap != nil && s.now().Sub(s.snap.FetchedAt) < s.TTL {
		return s.snap.Plugins, nil
	}

	plugins, err := s.Fetcher.FetchAll(ctx)
	if err != nil {
		if s.snap != nil {
			logger.Warning.Printf("[catalog] refresh failed, serving snapshot from %s: %v",
				s.snap.FetchedAt.Format(time.RFC3339), err)
			return s.snap.Plugins, nil
		}
		return nil, err
	}

	prev := s.snap
	s.snap = &Snapshot{Plugins: plugins, FetchedAt: s.now()}

	if s.Repo != nil {
		if err := s.Repo.Save(ctx, s.Fetcher.Key(), *s.snap); err != nil {
			logger.Warning.Printf("[catalog] write cache: %v", err)
		}
	}

	s.publishChanges(prev, s.snap)
	logger.Info.Printf("[catalog] refreshed: %d plugins", len(plugins))
	return plugins, nil
}

// Plugins returns the catalogue validated for migration.
func (s *Service) Plugins(ctx context.Context) ([]models.Plugin, error) {
	raw, err := s.Raw(ctx)
	if err != nil {
		return nil, err
	}
	return Descriptors(raw), nil
}

// Summaries returns the catalogue validated for the plugin browser.
func (s *Service) Summaries(ctx context.Context) ([]models.PluginSummary, error) {
	raw, err := s.Raw(ctx)
	if err != nil {
		return nil, err
	}
	return Summaries(raw), nil
}

func (s *Service) publishChanges(prev, next *Snapshot) {
	if s.Publisher == nil || prev == nil {
		return
	}

	added, removed := diffIDs(prev.Plugins, next.Plugins)
	if len(added) == 0 && len(removed) == 0 {
		return
	}

	ev := synchub.CatalogEvent{
		Type:    synchub.CatalogRefreshEvent,
		Added:   added,
		Removed: removed,
		Total:   len(next.Plugins),
		At:      next.FetchedAt.UTC(),
	}
	go s.Publisher.BroadcastJSON(ev)
}

func diffIDs(prev, next []RawPlugin) (added, removed []string) {
	before := idSet(prev)
	after := idSet(next)

	for id := range after {
		if _, ok := before[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range before {
		if _, ok := after[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func idSet(plugins []RawPlugin) map[string]struct{} {
	set := make(map[string]struct{}, len(plugins))
	for _, p := range plugins {
		if id := strings.TrimSpace(p.ID); id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}
