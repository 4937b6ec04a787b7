// Package migrate converts 1.x LNReader backups into 2.x library entries.
//
// The conversion is a pure function of the backup and the plugin catalogue:
// no I/O, no shared state, safe to call concurrently.
package migrate

import "lnreader/pkg/models"

// Migrate converts records against plugins using the built-in rules.
func Migrate(records []models.LegacyNovel, plugins []models.Plugin) models.MigrationResult {
	return DefaultRules().Migrate(records, plugins)
}

// Migrate walks records in order. Every record ends up either in
// MigratedNovels or in UnmatchedEntries; a bad record never stops the rest.
func (r Rules) Migrate(records []models.LegacyNovel, plugins []models.Plugin) models.MigrationResult {
	res := models.MigrationResult{
		MigratedNovels:   make([]models.MigratedNovel, 0, len(records)),
		RequiredPlugins:  []models.Plugin{},
		UnmatchedEntries: []models.UnmatchedEntry{},
	}
	seen := make(map[string]struct{})

	for _, rec := range records {
		cleaned := r.clean(rec)

		plugin, ok := MatchPlugin(cleaned.SourceURL, plugins)
		if !ok {
			res.UnmatchedEntries = append(res.UnmatchedEntries, models.UnmatchedEntry{
				NovelName: cleaned.NovelName,
				SourceURL: cleaned.SourceURL,
				Reason:    models.UnmatchedNoPlugin,
			})
			continue
		}

		res.MigratedNovels = append(res.MigratedNovels, models.MigratedNovel{
			ID:         cleaned.NovelID,
			Path:       r.BuildPath(cleaned.NovelURL, plugin),
			PluginID:   plugin.ID,
			Name:       cleaned.NovelName,
			Cover:      cleaned.NovelCover,
			Summary:    cleaned.NovelSummary,
			Author:     cleaned.Author,
			Status:     cleaned.Status,
			Genres:     cleaned.Genre,
			InLibrary:  cleaned.Followed != 0,
			IsLocal:    false,
			TotalPages: 0,
		})

		if _, dup := seen[plugin.ID]; !dup {
			seen[plugin.ID] = struct{}{}
			res.RequiredPlugins = append(res.RequiredPlugins, plugin)
		}
	}

	return res
}

// clean returns a copy of rec with its URLs normalized.
func (r Rules) clean(rec models.LegacyNovel) models.LegacyNovel {
	rec.SourceURL = r.Normalize(rec.SourceURL)
	rec.NovelURL = r.Normalize(rec.NovelURL)
	if rec.NovelCover != "" {
		rec.NovelCover = r.Normalize(rec.NovelCover)
	}
	return rec
}
