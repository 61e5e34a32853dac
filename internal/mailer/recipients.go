package mailer

import (
	"context"
	"path"
	"strings"

	"github.com/giantswarm/pipeline-replicator/internal/githubclient"
)

// ResolveRecipients implements the recipient resolution order from
// original_source/mailutil.py (spec §4.5, SPEC_FULL [SUPPLEMENT] point 4):
// CODEOWNERS entries matching changedPath, falling back to the head
// commit's author and committer when CODEOWNERS yields nothing. An empty
// result means "log and skip" — callers must not treat it as an error.
func ResolveRecipients(ctx context.Context, gh githubclient.Client, repo githubclient.Repository, committish, changedPath string) ([]string, error) {
	entries, err := gh.Codeowners(ctx, repo, committish)
	if err != nil {
		return nil, err
	}

	if owners := matchingOwners(entries, changedPath); len(owners) > 0 {
		return ownerLoginsToAddresses(owners), nil
	}

	author, committer, err := gh.HeadCommit(ctx, repo, committish)
	if err != nil {
		return nil, err
	}

	var fallback []string
	if author.Email != "" {
		fallback = append(fallback, author.Email)
	}
	if committer.Email != "" && committer.Email != author.Email {
		fallback = append(fallback, committer.Email)
	}
	return fallback, nil
}

// matchingOwners returns the owners of the most specific CODEOWNERS entry
// whose path pattern matches changedPath, mirroring CODEOWNERS'
// last-match-wins precedence.
func matchingOwners(entries []githubclient.CodeownersEntry, changedPath string) []string {
	var owners []string
	for _, e := range entries {
		if codeownersPatternMatches(e.PathPattern, changedPath) {
			owners = e.Owners
		}
	}
	return owners
}

// codeownersPatternMatches implements the subset of CODEOWNERS glob
// semantics this system needs: "*" matches the whole tree, a trailing "/"
// matches an entire directory, otherwise path.Match against the pattern.
func codeownersPatternMatches(pattern, changedPath string) bool {
	pattern = strings.TrimPrefix(pattern, "/")
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "/") {
		return strings.HasPrefix(changedPath, pattern)
	}
	ok, err := path.Match(pattern, changedPath)
	return err == nil && ok
}

// ownerLoginsToAddresses turns CODEOWNERS logins ("@user", "@org/team")
// into deliverable addresses. Team owners have no single mailbox in the
// abstract GitHub contract, so they are dropped — only individual logins
// resolve to an address, formed as "<login>@users.noreply.github.com"
// to match GitHub's own no-reply convention when no verified email is on
// file.
func ownerLoginsToAddresses(owners []string) []string {
	var addrs []string
	for _, o := range owners {
		login := strings.TrimPrefix(o, "@")
		if strings.Contains(login, "/") {
			continue // team, not an individual mailbox
		}
		addrs = append(addrs, login+"@users.noreply.github.com")
	}
	return addrs
}
