package migrate

import "strings"

// Normalize applies the domain replacements to url in declaration order.
// Each replacement fires at most once and only on a literal prefix match,
// so anything unrecognised (including garbage) comes back unchanged.
func (r Rules) Normalize(url string) string {
	for _, rep := range r.DomainReplacements {
		if rep.From != "" && strings.HasPrefix(url, rep.From) {
			url = rep.To + url[len(rep.From):]
		}
	}
	return url
}

// NormalizeURL normalizes url with the built-in rules.
func NormalizeURL(url string) string {
	return DefaultRules().Normalize(url)
}
