// Package gitref parses user-supplied repository locators into a structured
// owner/repo/branch reference.
package gitref

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	host          = "github.com"
	defaultBranch = "main"
)

// identPattern is the allow-pattern for owner and repository names.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Ref is a parsed repository reference. Immutable once parsed.
type Ref struct {
	Owner  string
	Repo   string
	Branch string

	// BranchExplicit records whether the branch came from the locator
	// (a /tree/<branch> suffix) rather than the default. The import
	// orchestrator only falls back to "master" when it is false.
	BranchExplicit bool
}

// NotGitHubHostError is returned when the locator does not point at github.com.
type NotGitHubHostError struct {
	Raw string
}

// Error implements the error interface.
func (e NotGitHubHostError) Error() string {
	return fmt.Sprintf("locator %q is not a github.com reference", e.Raw)
}

// MissingRepoSegmentError is returned when the locator has no owner/repo path.
type MissingRepoSegmentError struct {
	Raw string
}

// Error implements the error interface.
func (e MissingRepoSegmentError) Error() string {
	return fmt.Sprintf("locator %q is missing an owner/repo path", e.Raw)
}

// InvalidIdentifierError is returned when an owner or repo segment contains
// characters outside the allow-pattern.
type InvalidIdentifierError struct {
	Segment string
}

// Error implements the error interface.
func (e InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid repository identifier %q", e.Segment)
}

// Parse turns a raw locator like "https://github.com/acme/billing-api/tree/dev"
// into a Ref. It is pure: no network access, no side effects.
func Parse(raw string) (Ref, error) {
	rest := strings.TrimPrefix(raw, "https://")
	rest = strings.TrimPrefix(rest, "http://")

	// Require an exact host match: "github.community/..." must not pass.
	if rest != host && !strings.HasPrefix(rest, host+"/") {
		return Ref{}, NotGitHubHostError{Raw: raw}
	}
	rest = strings.TrimPrefix(rest, host)

	var segments []string
	for _, s := range strings.Split(rest, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 2 {
		return Ref{}, MissingRepoSegmentError{Raw: raw}
	}

	owner := segments[0]
	repo := strings.TrimSuffix(segments[1], ".git")

	if !identPattern.MatchString(owner) {
		return Ref{}, InvalidIdentifierError{Segment: owner}
	}
	if !identPattern.MatchString(repo) {
		return Ref{}, InvalidIdentifierError{Segment: repo}
	}

	ref := Ref{Owner: owner, Repo: repo, Branch: defaultBranch}

	// A /tree/<branch> suffix selects a branch; branch names may themselves
	// contain slashes, so everything after "tree" is rejoined.
	if len(segments) >= 4 && segments[2] == "tree" {
		ref.Branch = strings.Join(segments[3:], "/")
		ref.BranchExplicit = true
	}

	return ref, nil
}
