package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"lnreader/pkg/models"
)

// excludedPlugins are never offered to the backup upgrader.
var excludedPlugins = map[string]struct{}{
	"komga": {}, // self-hosted, has no fixed site to match against
}

// Descriptors validates raw entries for migration: strings are trimmed and
// entries missing id, name, site or iconUrl are dropped.
func Descriptors(raw []RawPlugin) []models.Plugin {
	out := make([]models.Plugin, 0, len(raw))
	for _, r := range raw {
		p := models.Plugin{
			ID:      strings.TrimSpace(r.ID),
			Name:    strings.TrimSpace(r.Name),
			Site:    strings.TrimSpace(r.Site),
			IconURL: strings.TrimSpace(r.IconURL),
			Lang:    strings.TrimSpace(r.Lang),
		}
		if p.ID == "" || p.Name == "" || p.Site == "" || p.IconURL == "" {
			continue
		}
		if _, skip := excludedPlugins[p.ID]; skip {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Summaries validates raw entries for the plugin browser and sorts them by name.
func Summaries(raw []RawPlugin) []models.PluginSummary {
	out := make([]models.PluginSummary, 0, len(raw))
	for _, r := range raw {
		s := models.PluginSummary{
			ID:      strings.TrimSpace(r.ID),
			Name:    strings.TrimSpace(r.Name),
			Version: strings.TrimSpace(r.Version),
			Lang:    strings.TrimSpace(r.Lang),
		}
		if s.ID == "" || s.Name == "" || s.Version == "" || s.Lang == "" {
			continue
		}
		out = append(out, s)
	}

	c := collate.New(language.English)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

// Filter keeps the summaries whose language equals lang and whose
// "name version lang" text contains query. Both comparisons ignore case;
// empty values match everything.
func Filter(plugins []models.PluginSummary, query, lang string) []models.PluginSummary {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	l := fold.String(strings.TrimSpace(lang))

	out := make([]models.PluginSummary, 0, len(plugins))
	for _, p := range plugins {
		if l != "" && fold.String(strings.TrimSpace(p.Lang)) != l {
			continue
		}
		if q != "" {
			haystack := fold.String(p.Name + " " + p.Version + " " + p.Lang)
			if !strings.Contains(haystack, q) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// Languages lists the distinct languages in collation order.
func Languages(plugins []models.PluginSummary) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range plugins {
		if p.Lang == "" {
			continue
		}
		if _, ok := seen[p.Lang]; ok {
			continue
		}
		seen[p.Lang] = struct{}{}
		out = append(out, p.Lang)
	}
	collate.New(language.English).SortStrings(out)
	return out
}
