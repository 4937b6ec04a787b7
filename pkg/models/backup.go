package models

// UnmatchedNoPlugin is the reason recorded for every legacy entry that could
// not be attached to a plugin.
const UnmatchedNoPlugin = "No matching plugin"

// LegacyNovel is one saved novel from a 1.x backup file.
type LegacyNovel struct {
	NovelID      int64  `json:"novelId"`
	SourceURL    string `json:"sourceUrl"`
	NovelURL     string `json:"novelUrl"`
	SourceID     int64  `json:"sourceId"`
	Source       string `json:"source"`
	NovelName    string `json:"novelName"`
	NovelCover   string `json:"novelCover,omitempty"`
	NovelSummary string `json:"novelSummary,omitempty"`
	Genre        string `json:"genre,omitempty"`
	Author       string `json:"author,omitempty"`
	Status       string `json:"status,omitempty"`
	Followed     int    `json:"followed"` // 0 or 1
	CategoryIDs  string `json:"categoryIds,omitempty"`
}

// MigratedNovel is the 2.x library entry produced from a LegacyNovel.
type MigratedNovel struct {
	ID         int64  `json:"id"`
	Path       string `json:"path"` // plugin-relative path
	PluginID   string `json:"pluginId"`
	Name       string `json:"name"`
	Cover      string `json:"cover,omitempty"`
	Summary    string `json:"summary,omitempty"`
	Author     string `json:"author,omitempty"`
	Status     string `json:"status,omitempty"`
	Genres     string `json:"genres,omitempty"`
	InLibrary  bool   `json:"inLibrary"`
	IsLocal    bool   `json:"isLocal"`
	TotalPages int    `json:"totalPages"` // unknown until the app syncs the novel
}

type UnmatchedEntry struct {
	NovelName string `json:"novelName"`
	SourceURL string `json:"sourceUrl"`
	Reason    string `json:"reason"`
}

// MigrationResult partitions a backup into migrated and unmatched entries.
// RequiredPlugins holds every plugin referenced by MigratedNovels exactly
// once, in first-seen order.
type MigrationResult struct {
	MigratedNovels   []MigratedNovel  `json:"migratedNovels"`
	RequiredPlugins  []Plugin         `json:"requiredPlugins"`
	UnmatchedEntries []UnmatchedEntry `json:"unmatchedEntries"`
}
