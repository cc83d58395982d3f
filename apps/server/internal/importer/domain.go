// Package importer implements the repository import pipeline: parse the
// locator, fetch and gate the snapshot, extract admissible files, upload them
// to the content store, and commit the resulting container.
package importer

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tilsley/bindle/pkg/api"
)

// RepoMetadata is the read-only snapshot fetched once per import or info
// call. It is never persisted beyond the response.
type RepoMetadata struct {
	Description   string
	Stars         int
	Forks         int
	Language      string
	SizeKB        int64
	DefaultBranch string
}

// ImportResult is the orchestrator's terminal output. Written once.
type ImportResult struct {
	Container      api.Container
	SandboxURL     string
	FileCount      int
	SkippedCount   int
	TotalSizeBytes int64
	RepoInfo       api.RepoInfo
}

// DeriveContainerName builds the default container name for a repository.
// Owner and repo have already passed the identifier allow-pattern.
func DeriveContainerName(owner, repo string) string {
	return strings.ToLower(owner + "-" + repo)
}

const passwordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789"

// NewPassword returns the 8-character access password for a fresh container.
// The alphabet omits easily-confused glyphs (0/O, 1/l/I).
func NewPassword() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand on supported platforms does not fail; uuid is the
		// fallback rather than a panic in the request path.
		return uuid.New().String()[:8]
	}
	for i, b := range buf {
		buf[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	return string(buf)
}

// shortSuffix is appended to a container name that collides with an existing one.
func shortSuffix() string {
	return uuid.New().String()[:6]
}

// HumanSize renders a KB count the way the info endpoint reports it.
func HumanSize(kb int64) string {
	switch {
	case kb >= 1<<20:
		return fmt.Sprintf("%.1f GB", float64(kb)/(1<<20))
	case kb >= 1<<10:
		return fmt.Sprintf("%.1f MB", float64(kb)/(1<<10))
	default:
		return fmt.Sprintf("%d KB", kb)
	}
}
