package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/bindle/apps/server/internal/importer"
	"github.com/tilsley/bindle/apps/server/internal/importer/archive"
	"github.com/tilsley/bindle/apps/server/internal/importer/fetch"
	"github.com/tilsley/bindle/pkg/api"
)

// ─── Success path ─────────────────────────────────────────────────────────────

func TestImport_Success(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/import", api.ImportRequest{RepoUrl: "https://github.com/Acme/Widgets"})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp api.ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.ContainerId)
	assert.Equal(t, "acme-widgets", resp.ContainerName)
	assert.Len(t, resp.Password, 8)
	assert.Equal(t, "https://bindle.test/c/acme-widgets", resp.SandboxUrl)
	assert.Equal(t, 2, resp.FileCount)
	assert.Equal(t, 0, resp.SkippedCount)
	assert.Equal(t, "Acme", resp.RepoInfo.Owner)
	assert.Equal(t, "Widgets", resp.RepoInfo.Repo)
	assert.Equal(t, "main", resp.RepoInfo.Branch)
	assert.Equal(t, "Go", resp.RepoInfo.Language)
}

func TestImport_PersistsContainer(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/import", api.ImportRequest{RepoUrl: "github.com/acme/widgets"})
	require.Equal(t, http.StatusCreated, w.Code)

	saved, err := ts.containers.GetByName(context.Background(), "acme-widgets")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Len(t, saved.Files, 2)
	assert.Equal(t, "acme", saved.Source.Owner)
}

func TestImport_MasterFallback(t *testing.T) {
	ts := newTestServer(t)
	ts.host.archiveFn = func(_ context.Context, _, _, branch string, _ int64) ([]byte, error) {
		if branch == "master" {
			return defaultArchive, nil
		}
		return nil, fetch.HTTPStatusError{URL: "https://codeload.test", StatusCode: 404}
	}

	w := ts.do("POST", "/import", api.ImportRequest{RepoUrl: "https://github.com/acme/legacy"})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp api.ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "master", resp.RepoInfo.Branch)
}

// ─── Request validation ───────────────────────────────────────────────────────

func TestImport_WithValidationMiddleware(t *testing.T) {
	ts := newTestServerWithValidation(t)

	w := ts.do("POST", "/import", map[string]string{"repoUrl": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do("POST", "/import", api.ImportRequest{RepoUrl: "https://github.com/acme/widgets"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestImport_MissingRepoUrl_Returns400(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/import", map[string]string{"branch": "main"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImport_NonGitHubUrl_Returns400(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/import", api.ImportRequest{RepoUrl: "https://gitlab.com/acme/widgets"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImport_UrlWithoutRepo_Returns400(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/import", api.ImportRequest{RepoUrl: "https://github.com/acme"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ─── Pipeline errors ──────────────────────────────────────────────────────────

func TestImport_RateLimited_Returns429(t *testing.T) {
	ts := newTestServer(t)
	ts.limiter.allow = false

	w := ts.do("POST", "/import", api.ImportRequest{RepoUrl: "https://github.com/acme/widgets"})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestImport_RepoNotFound_Returns404(t *testing.T) {
	ts := newTestServer(t)
	ts.host.metadataFn = func(_ context.Context, owner, repo string) (*importer.RepoMetadata, error) {
		return nil, importer.RepoNotFoundError{Owner: owner, Repo: repo}
	}

	w := ts.do("POST", "/import", api.ImportRequest{RepoUrl: "https://github.com/acme/ghost"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImport_BranchNotFound_Returns404(t *testing.T) {
	ts := newTestServer(t)
	ts.host.archiveFn = func(_ context.Context, _, _, _ string, _ int64) ([]byte, error) {
		return nil, fetch.HTTPStatusError{URL: "https://codeload.test", StatusCode: 404}
	}

	w := ts.do("POST", "/import", api.ImportRequest{
		RepoUrl: "https://github.com/acme/widgets",
		Branch:  "release-9",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImport_RepoTooLarge_Returns413(t *testing.T) {
	ts := newTestServer(t)
	ts.host.metadataFn = func(_ context.Context, _, _ string) (*importer.RepoMetadata, error) {
		return &importer.RepoMetadata{SizeKB: 500 * 1024, DefaultBranch: "main"}, nil
	}

	w := ts.do("POST", "/import", api.ImportRequest{RepoUrl: "https://github.com/acme/monorepo"})

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestImport_ArchiveTooLarge_Returns413(t *testing.T) {
	ts := newTestServer(t)
	ts.host.archiveFn = func(_ context.Context, _, _, _ string, maxBytes int64) ([]byte, error) {
		return nil, fetch.SizeExceededError{URL: "https://codeload.test", MaxBytes: maxBytes}
	}

	w := ts.do("POST", "/import", api.ImportRequest{RepoUrl: "https://github.com/acme/widgets"})

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestImport_NoAdmissibleFiles_Returns400(t *testing.T) {
	ts := newTestServer(t)
	ts.host.archiveFn = func(_ context.Context, _, _, _ string, _ int64) ([]byte, error) {
		return buildZip(t, [][2]string{{"repo-main/setup.exe", "MZ"}}), nil
	}

	w := ts.do("POST", "/import", api.ImportRequest{RepoUrl: "https://github.com/acme/widgets"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImport_AllUploadsFail_Returns500(t *testing.T) {
	ts := newTestServer(t)
	ts.uploader.uploadFn = func(_ context.Context, _ string, entries []archive.Entry) ([]api.UploadedFile, int) {
		return nil, len(entries)
	}

	w := ts.do("POST", "/import", api.ImportRequest{RepoUrl: "https://github.com/acme/widgets"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestImport_HostError_Returns500(t *testing.T) {
	ts := newTestServer(t)
	ts.host.archiveFn = func(_ context.Context, _, _, _ string, _ int64) ([]byte, error) {
		return []byte("not a zip"), nil
	}

	w := ts.do("POST", "/import", api.ImportRequest{RepoUrl: "https://github.com/acme/widgets"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestImport_ErrorBodyShape(t *testing.T) {
	ts := newTestServer(t)
	ts.limiter.allow = false

	w := ts.do("POST", "/import", api.ImportRequest{RepoUrl: "https://github.com/acme/widgets"})

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}
