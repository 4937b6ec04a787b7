package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repo caches fetched catalogues in sqlite so a restart does not have to
// hit the plugin repositories again.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Snapshot is a cached catalogue.
type Snapshot struct {
	Plugins   []RawPlugin
	FetchedAt time.Time
}

func (r *Repo) Save(ctx context.Context, key string, snap Snapshot) error {
	payload, err := json.Marshal(snap.Plugins)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO plugin_catalog (repository, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(repository) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, key, string(payload), snap.FetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}

// Get returns nil when nothing is cached under key.
func (r *Repo) Get(ctx context.Context, key string) (*Snapshot, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT payload, fetched_at
		FROM plugin_catalog
		WHERE repository = ?
	`, key)

	var (
		payload   string
		fetchedAt time.Time
	)
	if err := row.Scan(&payload, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get catalog: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap.Plugins); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	snap.FetchedAt = fetchedAt
	return &snap, nil
}
