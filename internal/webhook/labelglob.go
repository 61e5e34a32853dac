package webhook

import (
	"strings"

	"github.com/gobwas/glob"
)

// Job-required labels (ciclient.Resource.Labels, from a job's
// source.label) may be glob patterns rather than exact label names — a
// job mapping can require "reviewed/*" to accept any review-team ack
// instead of enumerating each team's label. Matched with
// github.com/gobwas/glob the way open-component-model's resolverProvider
// matches component-name patterns against a glob rather than an exact
// string.
func labelMatches(pattern, label string) bool {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return pattern == label
	}
	return g.Match(label)
}

func anyLabelMatches(labels []string, pattern string) bool {
	for _, l := range labels {
		if labelMatches(pattern, l) {
			return true
		}
	}
	return false
}

// labelMatchesAnyPattern reports whether label satisfies any of patterns.
func labelMatchesAnyPattern(label string, patterns []string) bool {
	for _, p := range patterns {
		if labelMatches(p, label) {
			return true
		}
	}
	return false
}

// isLiteralLabel reports whether pattern names one concrete label rather
// than a family of them — only literal labels can actually be applied to
// a PR via AddLabels; a pattern like "reviewed/*" can only ever be
// matched against labels that already exist.
func isLiteralLabel(pattern string) bool {
	return !strings.ContainsAny(pattern, "*?[{")
}
