// Package githost adapts the GitHub API and its archive host to the
// importer's RepoHost port.
package githost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gogithub "github.com/google/go-github/v75/github"

	"github.com/tilsley/bindle/apps/server/internal/importer"
	"github.com/tilsley/bindle/apps/server/internal/importer/fetch"
)

// Compile-time check: *Client implements importer.RepoHost.
var _ importer.RepoHost = (*Client)(nil)

// Client reads repository metadata through the GitHub API and branch
// snapshots through the codeload archive host.
type Client struct {
	gh          *gogithub.Client
	fetcher     *fetch.Client
	codeloadURL string
}

// New creates a Client. codeloadURL is the archive host base
// (e.g. "https://codeload.github.com", or a mock server for local dev).
func New(gh *gogithub.Client, fetcher *fetch.Client, codeloadURL string) *Client {
	return &Client{
		gh:          gh,
		fetcher:     fetcher,
		codeloadURL: strings.TrimSuffix(codeloadURL, "/"),
	}
}

// Metadata fetches the repository snapshot used by the size gate and the
// info endpoint. A 404 from the API maps to importer.RepoNotFoundError.
func (c *Client) Metadata(ctx context.Context, owner, repo string) (*importer.RepoMetadata, error) {
	r, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, importer.RepoNotFoundError{Owner: owner, Repo: repo, Err: err}
		}
		return nil, fmt.Errorf("fetch metadata for %s/%s: %w", owner, repo, err)
	}

	return &importer.RepoMetadata{
		Description:   r.GetDescription(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		Language:      r.GetLanguage(),
		SizeKB:        int64(r.GetSize()),
		DefaultBranch: r.GetDefaultBranch(),
	}, nil
}

// Archive downloads the branch zip snapshot through the bounded fetcher.
// A 404 from the archive host maps to importer.BranchNotFoundError.
func (c *Client) Archive(ctx context.Context, owner, repo, branch string, maxBytes int64) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s/zip/refs/heads/%s", c.codeloadURL, owner, repo, branch)

	buf, err := c.fetcher.FetchBytes(ctx, url, maxBytes)
	if err != nil {
		var statusErr fetch.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, importer.BranchNotFoundError{Owner: owner, Repo: repo, Branch: branch}
		}
		return nil, err
	}
	return buf, nil
}
