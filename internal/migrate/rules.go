package migrate

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Replacement rewrites URLs starting with From so they start with To instead.
type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// PathRewrite turns a site-relative path into the path a plugin expects.
type PathRewrite func(path string) string

// Rules holds the lookup tables used during a migration.
type Rules struct {
	DomainReplacements []Replacement
	PathRewrites       map[string]PathRewrite // keyed by plugin id
}

// RequirePrefix returns a rewrite that prepends prefix unless the path
// already starts with it.
func RequirePrefix(prefix string) PathRewrite {
	return func(path string) string {
		if strings.HasPrefix(path, prefix) {
			return path
		}
		return prefix + path
	}
}

func identity(path string) string { return path }

// DefaultRules returns the domain moves and path prefixes known for 1.x backups.
func DefaultRules() Rules {
	return Rules{
		DomainReplacements: []Replacement{
			{From: "https://www.wuxiap.com/", To: "https://www.wuxiabox.com/"},
			{From: "https://allnovelfull.com/", To: "https://allnovelfull.net/"},
		},
		PathRewrites: map[string]PathRewrite{
			"boxnovel":     RequirePrefix("novel/"),
			"1stkissnovel": RequirePrefix("novel/"),
			"royalroad":    RequirePrefix("fiction/"),
		},
	}
}

// rewriteFor returns the rewrite registered for pluginID, or identity.
func (r Rules) rewriteFor(pluginID string) PathRewrite {
	if fn, ok := r.PathRewrites[pluginID]; ok && fn != nil {
		return fn
	}
	return identity
}

type rulesFile struct {
	DomainReplacements []Replacement      `yaml:"domain_replacements"`
	PathPrefixes       map[string]string `yaml:"path_prefixes"`
}

// LoadRules reads a YAML rules file and layers it over DefaultRules.
// Replacements from the file run after the built-in ones; a path prefix from
// the file replaces the built-in rule for the same plugin.
//
//	domain_replacements:
//	  - from: https://old.example.com/
//	    to: https://new.example.com/
//	path_prefixes:
//	  examplenovel: book/
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	b, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("read rules %s: %w", path, err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return rules, fmt.Errorf("parse rules %s: %w", path, err)
	}

	for i, rep := range f.DomainReplacements {
		if strings.TrimSpace(rep.From) == "" {
			return rules, fmt.Errorf("parse rules %s: domain_replacements[%d]: empty from", path, i)
		}
		rules.DomainReplacements = append(rules.DomainReplacements, rep)
	}
	for id, prefix := range f.PathPrefixes {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if prefix == "" {
			rules.PathRewrites[id] = identity
			continue
		}
		rules.PathRewrites[id] = RequirePrefix(prefix)
	}
	return rules, nil
}
