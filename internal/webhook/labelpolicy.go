package webhook

import (
	"context"

	"github.com/giantswarm/pipeline-replicator/internal/githubclient"
)

// LabelPolicy configures _should_label (spec §4.6 "Label Policy", P7).
// TrustedTeams entries are of the form "org/team" or "host/org/team"; a
// bare "org/team" is anchored to the event's own hostname.
type LabelPolicy struct {
	TrustedTeams []string
	// EmptyTrustedTeamsFallsBackToOrgMembership decides the case where a
	// TrustedTeams entry matches the event's host and org but the sender
	// is in none of the matched teams: true lets org membership decide,
	// false denies. With no matching entry (TrustedTeams empty, or only
	// entries for other hosts or orgs) org membership always decides. The
	// webhook handler sets it true; strict trusted-team-only enforcement
	// sets it false.
	EmptyTrustedTeamsFallsBackToOrgMembership bool
}

// shouldLabel implements spec §4.6 _should_label / P7: a trusted-team
// member is always allowed; otherwise an org member is allowed, unless a
// trusted team matched this host and org and
// policy.EmptyTrustedTeamsFallsBackToOrgMembership is false; everyone
// else is denied.
func shouldLabel(ctx context.Context, gh githubclient.Client, policy LabelPolicy, hostname, org, senderLogin string) (bool, error) {
	hostAndOrgHadMatch := false
	for _, pattern := range policy.TrustedTeams {
		host, patternOrg, team, ok := parseTrustedTeamPattern(pattern, hostname)
		if !ok || host != hostname || patternOrg != org {
			continue
		}
		hostAndOrgHadMatch = true
		member, err := gh.IsTeamMember(ctx, hostname, org, team, senderLogin)
		if err != nil {
			return false, err
		}
		if member {
			return true, nil
		}
	}

	if hostAndOrgHadMatch && !policy.EmptyTrustedTeamsFallsBackToOrgMembership {
		return false, nil
	}

	return gh.IsOrgMember(ctx, hostname, org, senderLogin)
}

// parseTrustedTeamPattern splits a "org/team" or "host/org/team" entry
// into (host, org, team). "org/team" is anchored to defaultHostname since
// that's the overwhelmingly common case and the config author shouldn't
// have to spell it out for the default host every time.
func parseTrustedTeamPattern(pattern, defaultHostname string) (host, org, team string, ok bool) {
	parts := splitNonEmpty(pattern, '/')
	switch len(parts) {
	case 2:
		return defaultHostname, parts[0], parts[1], true
	case 3:
		return parts[0], parts[1], parts[2], true
	default:
		return "", "", "", false
	}
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
