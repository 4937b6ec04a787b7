package models

// Plugin describes a content-source plugin as published in a plugin
// repository feed. Only entries with id, name, site and iconUrl make it
// this far; see catalog.Descriptors.
type Plugin struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Site    string `json:"site"`    // base URL, e.g. https://boxnovel.com
	IconURL string `json:"iconUrl"` // icon shown next to the plugin name
	Lang    string `json:"lang,omitempty"`
}

// PluginSummary is one row of the plugin browser.
type PluginSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Lang    string `json:"lang"`
}
