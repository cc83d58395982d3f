package handler_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/bindle/apps/server/internal/importer"
	"github.com/tilsley/bindle/apps/server/internal/importer/archive"
	"github.com/tilsley/bindle/apps/server/internal/importer/handler"
	"github.com/tilsley/bindle/apps/server/internal/importer/store"
	"github.com/tilsley/bindle/apps/server/internal/platform/validation"
	"github.com/tilsley/bindle/pkg/api"
	"github.com/tilsley/bindle/schemas"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ─── Stubs ────────────────────────────────────────────────────────────────────

type stubHost struct {
	metadataFn func(ctx context.Context, owner, repo string) (*importer.RepoMetadata, error)
	archiveFn  func(ctx context.Context, owner, repo, branch string, maxBytes int64) ([]byte, error)
}

func (h *stubHost) Metadata(ctx context.Context, owner, repo string) (*importer.RepoMetadata, error) {
	if h.metadataFn != nil {
		return h.metadataFn(ctx, owner, repo)
	}
	return &importer.RepoMetadata{
		Description:   "A test repository",
		Stars:         42,
		Forks:         7,
		Language:      "Go",
		SizeKB:        512,
		DefaultBranch: "main",
	}, nil
}

func (h *stubHost) Archive(ctx context.Context, owner, repo, branch string, maxBytes int64) ([]byte, error) {
	if h.archiveFn != nil {
		return h.archiveFn(ctx, owner, repo, branch, maxBytes)
	}
	return defaultArchive, nil
}

// defaultArchive is a two-file snapshot under a root directory, the shape
// GitHub's codeload zips take.
var defaultArchive = func() []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, m := range [][2]string{
		{"repo-main/README.md", "# readme"},
		{"repo-main/main.go", "package main"},
	} {
		f, _ := w.Create(m[0])
		_, _ = f.Write([]byte(m[1]))
	}
	_ = w.Close()
	return buf.Bytes()
}()

type stubUploader struct {
	uploadFn func(ctx context.Context, keyPrefix string, entries []archive.Entry) ([]api.UploadedFile, int)
}

func (u *stubUploader) UploadAll(ctx context.Context, keyPrefix string, entries []archive.Entry) ([]api.UploadedFile, int) {
	if u.uploadFn != nil {
		return u.uploadFn(ctx, keyPrefix, entries)
	}
	files := make([]api.UploadedFile, 0, len(entries))
	for _, e := range entries {
		files = append(files, api.UploadedFile{
			StorageKey:   keyPrefix + "/" + e.Path,
			OriginalName: e.Path,
			MimeType:     "application/octet-stream",
			SizeBytes:    e.Size,
			RelativePath: e.Path,
			ContentUrl:   "https://cdn.test/" + keyPrefix + "/" + e.Path,
		})
	}
	return files, 0
}

type stubLimiter struct {
	allow bool
}

func (l *stubLimiter) Allow(string) bool { return l.allow }

// ─── Test server builder ──────────────────────────────────────────────────────

type testServer struct {
	router     *gin.Engine
	host       *stubHost
	uploader   *stubUploader
	containers *store.MemoryContainerStore
	limiter    *stubLimiter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		host:       &stubHost{},
		uploader:   &stubUploader{},
		containers: store.NewMemoryContainerStore(),
		limiter:    &stubLimiter{allow: true},
	}
	svc := importer.NewService(ts.host, ts.uploader, ts.containers, ts.limiter, 100, "https://bindle.test", slog.Default())
	r := gin.New()
	handler.RegisterRoutes(r, svc, slog.Default())
	ts.router = r
	return ts
}

func newTestServerWithValidation(t *testing.T) *testServer {
	t.Helper()
	ts := newTestServer(t)
	mw, err := validation.New(schemas.OpenAPISpec)
	require.NoError(t, err)
	svc := importer.NewService(ts.host, ts.uploader, ts.containers, ts.limiter, 100, "https://bindle.test", slog.Default())
	r := gin.New()
	r.Use(mw)
	handler.RegisterRoutes(r, svc, slog.Default())
	ts.router = r
	return ts
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func buildZip(t *testing.T, members [][2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, m := range members {
		f, err := w.Create(m[0])
		require.NoError(t, err)
		_, err = f.Write([]byte(m[1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}
