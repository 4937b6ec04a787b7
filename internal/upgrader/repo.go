package upgrader

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"lnreader/pkg/models"
)

// Report is a stored migration run, kept so the result can be downloaded later.
type Report struct {
	ID        string                 `json:"id"`
	Result    models.MigrationResult `json:"result"`
	CreatedAt time.Time              `json:"created_at"`
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Save(ctx context.Context, rep Report) error {
	migrated, err := json.Marshal(rep.Result.MigratedNovels)
	if err != nil {
		return fmt.Errorf("marshal migrated novels: %w", err)
	}
	plugins, err := json.Marshal(rep.Result.RequiredPlugins)
	if err != nil {
		return fmt.Errorf("marshal required plugins: %w", err)
	}
	unmatched, err := json.Marshal(rep.Result.UnmatchedEntries)
	if err != nil {
		return fmt.Errorf("marshal unmatched entries: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO migration_reports
			(id, migrated_count, unmatched_count, migrated_novels, required_plugins, unmatched_entries, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rep.ID,
		len(rep.Result.MigratedNovels),
		len(rep.Result.UnmatchedEntries),
		string(migrated),
		string(plugins),
		string(unmatched),
		rep.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// Get returns nil when the report does not exist.
func (r *Repo) Get(ctx context.Context, id string) (*Report, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, migrated_novels, required_plugins, unmatched_entries, created_at
		FROM migration_reports
		WHERE id = ?
	`, id)

	var (
		rep                          Report
		migrated, plugins, unmatched string
	)
	if err := row.Scan(&rep.ID, &migrated, &plugins, &unmatched, &rep.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get report: %w", err)
	}

	if err := json.Unmarshal([]byte(migrated), &rep.Result.MigratedNovels); err != nil {
		return nil, fmt.Errorf("decode migrated novels: %w", err)
	}
	if err := json.Unmarshal([]byte(plugins), &rep.Result.RequiredPlugins); err != nil {
		return nil, fmt.Errorf("decode required plugins: %w", err)
	}
	if err := json.Unmarshal([]byte(unmatched), &rep.Result.UnmatchedEntries); err != nil {
		return nil, fmt.Errorf("decode unmatched entries: %w", err)
	}
	return &rep, nil
}

// DeleteOlderThan prunes reports created before cutoff.
func (r *Repo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM migration_reports WHERE created_at < ?
	`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune reports: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
