package migrate

import (
	"regexp"
	"strings"

	"lnreader/pkg/models"
)

var (
	repeatedSlashes = regexp.MustCompile(`/{2,}`)
	schemeAuthority = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)
)

// BuildPath derives the plugin-relative path of a novel from its legacy
// absolute URL, using the built-in rules.
func BuildPath(novelURL string, plugin models.Plugin) string {
	return DefaultRules().BuildPath(novelURL, plugin)
}

// BuildPath strips the plugin site from novelURL, applies the plugin's path
// rewrite and collapses repeated slashes. It is a string transform: when the
// site is not a prefix of novelURL nothing is stripped and the rest still runs.
func (r Rules) BuildPath(novelURL string, plugin models.Plugin) string {
	path := novelURL

	if isAbsoluteURL(path) {
		base := strings.TrimRight(plugin.Site, "/")
		if base != "" {
			path = strings.TrimPrefix(path, base)
		}
	}

	path = r.rewriteFor(plugin.ID)(path)

	return repeatedSlashes.ReplaceAllString(path, "/")
}

// isAbsoluteURL reports whether raw starts with a scheme and an authority.
// Malformed escapes later in the URL do not matter.
func isAbsoluteURL(raw string) bool {
	return schemeAuthority.MatchString(raw)
}
