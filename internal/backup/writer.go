package backup

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"lnreader/pkg/models"
)

// MigratedFileName is the suggested name for the upgraded backup.
const MigratedFileName = "migrated-backup.json"

// WriteMigrated writes novels as an indented JSON array, ready to import into 2.x.
func WriteMigrated(w io.Writer, novels []models.MigratedNovel) error {
	if novels == nil {
		novels = []models.MigratedNovel{}
	}
	b, err := json.MarshalIndent(novels, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal migrated novels: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write migrated novels: %w", err)
	}
	return nil
}

// WriteUnmatchedCSV writes a review list of the entries that were not migrated.
func WriteUnmatchedCSV(w io.Writer, entries []models.UnmatchedEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"novel_name", "source_url", "reason"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.NovelName, e.SourceURL, e.Reason}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
