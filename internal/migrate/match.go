package migrate

import (
	"net/url"
	"strings"

	"lnreader/pkg/models"
)

// MatchPlugin returns the first plugin whose site has the same host as
// sourceURL, ignoring case and a leading "www.". URLs that do not parse or
// carry no host never match.
func MatchPlugin(sourceURL string, plugins []models.Plugin) (models.Plugin, bool) {
	want, ok := hostKey(sourceURL)
	if !ok {
		return models.Plugin{}, false
	}

	for _, p := range plugins {
		got, ok := hostKey(p.Site)
		if !ok {
			continue
		}
		if got == want {
			return p, true
		}
	}
	return models.Plugin{}, false
}

func hostKey(raw string) (string, bool) {
	u, err := url.Parse(origin(strings.TrimSpace(raw)))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}
	return strings.TrimPrefix(host, "www."), true
}

// origin cuts an absolute URL after its authority so that a malformed path
// or query cannot hide the host.
func origin(raw string) string {
	m := schemeAuthority.FindString(raw)
	if m == "" {
		return raw
	}
	if i := strings.IndexAny(raw[len(m):], "/?#"); i >= 0 {
		return raw[:len(m)+i]
	}
	return raw
}
