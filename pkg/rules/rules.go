// Package rules registers the built-in rules.
package rules

import (
	"fmt"
	"sort"

	"github.com/odvcencio/gts-modlint/pkg/config"
	"github.com/odvcencio/gts-modlint/pkg/entrypoint"
	"github.com/odvcencio/gts-modlint/pkg/lint"
	"github.com/odvcencio/gts-modlint/pkg/rules/noabsolutepath"
	"github.com/odvcencio/gts-modlint/pkg/rules/noimportmoduleexports"
)

// Registry maps rule names to rules.
type Registry struct {
	byName map[string]lint.Rule
	names  []string
}

// NewRegistry builds the registry of built-in rules. locator is shared by the
// rules that resolve package entry points.
func NewRegistry(locator *entrypoint.Locator) *Registry {
	r := &Registry{byName: map[string]lint.Rule{}}
	r.add(noimportmoduleexports.New(locator))
	r.add(noabsolutepath.New())
	return r
}

func (r *Registry) add(rule lint.Rule) {
	name := rule.Meta().Name
	r.byName[name] = rule
	r.names = append(r.names, name)
	sort.Strings(r.names)
}

// Names returns every rule name in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Get returns the named rule.
func (r *Registry) Get(name string) (lint.Rule, bool) {
	rule, ok := r.byName[name]
	return rule, ok
}

// All returns every rule in name order.
func (r *Registry) All() []lint.Rule {
	out := make([]lint.Rule, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.byName[name])
	}
	return out
}

// Select resolves configured rules into enabled rules. Unconfigured rules run
// with default options when recommended. A non-empty only list restricts the
// run to those rules. Unknown rule names are an error.
func (r *Registry) Select(settings map[string]config.RuleConfig, only []string) ([]lint.Enabled, error) {
	for name := range settings {
		if _, ok := r.byName[name]; !ok {
			return nil, fmt.Errorf("unknown rule %q", name)
		}
	}

	onlySet := map[string]bool{}
	for _, name := range only {
		if _, ok := r.byName[name]; !ok {
			return nil, fmt.Errorf("unknown rule %q", name)
		}
		onlySet[name] = true
	}

	enabled := make([]lint.Enabled, 0, len(r.names))
	for _, name := range r.names {
		rule := r.byName[name]
		setting, configured := settings[name]

		switch {
		case len(onlySet) > 0:
			if !onlySet[name] {
				continue
			}
		case configured:
			if !setting.Enabled {
				continue
			}
		case !rule.Meta().Recommended:
			continue
		}
		enabled = append(enabled, lint.Enabled{Rule: rule, Options: setting.Options})
	}
	return enabled, nil
}

