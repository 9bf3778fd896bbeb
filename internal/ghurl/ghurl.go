// Package ghurl classifies GitHub web and clone URLs into the shapes the
// rest of the tool cares about: repositories, user project boards, and
// organization project boards.
package ghurl

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Kind classifies what a GitHub URL points at.
type Kind string

const (
	KindRepository  Kind = "repository"
	KindUserProject Kind = "user-project"
	KindOrgProject  Kind = "org-project"
	KindUnknown     Kind = "unknown"
)

// Location is the parsed form of a GitHub URL.
type Location struct {
	Kind   Kind
	Owner  string
	Repo   string
	Number int  // project number for project URLs
	Org    bool // true for organization-owned projects
}

// Parse classifies raw as a repository, user project, or organization
// project URL. A missing scheme is assumed to be https, repository subpaths
// like /issues/123 or /actions still classify as the repository, and
// unrecognized shapes come back as KindUnknown. Parse never fails.
func Parse(raw string) Location {
	raw = strings.TrimSpace(raw)

	// SSH clone syntax: git@github.com:owner/repo.git
	if rest, ok := strings.CutPrefix(raw, "git@github.com:"); ok {
		parts := segments(strings.TrimSuffix(rest, ".git"))
		if len(parts) >= 2 {
			return Location{Kind: KindRepository, Owner: parts[0], Repo: parts[1]}
		}
		return Location{Kind: KindUnknown}
	}

	if raw != "" && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || !githubHost(u.Host) {
		return Location{Kind: KindUnknown}
	}

	parts := segments(u.Path)
	switch {
	case len(parts) >= 4 && parts[0] == "users" && parts[2] == "projects":
		if n, err := strconv.Atoi(parts[3]); err == nil {
			return Location{Kind: KindUserProject, Owner: parts[1], Number: n}
		}
	case len(parts) >= 4 && parts[0] == "orgs" && parts[2] == "projects":
		if n, err := strconv.Atoi(parts[3]); err == nil {
			return Location{Kind: KindOrgProject, Owner: parts[1], Number: n, Org: true}
		}
	case len(parts) >= 2 && parts[0] != "users" && parts[0] != "orgs":
		return Location{Kind: KindRepository, Owner: parts[0], Repo: strings.TrimSuffix(parts[1], ".git")}
	}

	return Location{Kind: KindUnknown}
}

// ParseIssue extracts the owner, repository, and number from a full issue or
// pull request URL like https://github.com/owner/repo/issues/123.
func ParseIssue(raw string) (owner, repo string, number int, err error) {
	loc := Parse(raw)
	if loc.Kind != KindRepository {
		return "", "", 0, fmt.Errorf("not an issue URL: %s", raw)
	}

	parts := segments(after(raw))
	if len(parts) >= 4 && (parts[2] == "issues" || parts[2] == "pull") {
		n, aerr := strconv.Atoi(parts[3])
		if aerr == nil && n > 0 {
			return parts[0], parts[1], n, nil
		}
	}
	return "", "", 0, fmt.Errorf("not an issue URL: %s", raw)
}

// after strips scheme and host, leaving the path.
func after(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}

func githubHost(host string) bool {
	return host == "github.com" || host == "www.github.com"
}

func segments(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
