package importer

import (
	"context"

	"github.com/tilsley/bindle/apps/server/internal/importer/archive"
	"github.com/tilsley/bindle/pkg/api"
)

// RepoHost reads repository metadata and archive snapshots from the upstream
// code host. The githost package provides the concrete implementation.
type RepoHost interface {
	Metadata(ctx context.Context, owner, repo string) (*RepoMetadata, error)
	// Archive returns the zip snapshot of a branch, at most maxBytes large.
	Archive(ctx context.Context, owner, repo, branch string, maxBytes int64) ([]byte, error)
}

// Uploader pushes extracted entries to the content store.
// The upload package provides the concrete implementation.
type Uploader interface {
	UploadAll(ctx context.Context, keyPrefix string, entries []archive.Entry) ([]api.UploadedFile, int)
}

// ContainerStore persists committed containers. Name lookup is exact but
// case-insensitive; Get/GetByName return nil, nil when absent.
type ContainerStore interface {
	Save(ctx context.Context, c api.Container) error
	Get(ctx context.Context, id string) (*api.Container, error)
	GetByName(ctx context.Context, name string) (*api.Container, error)
}

// Limiter gates orchestrator invocation per client identity.
type Limiter interface {
	Allow(key string) bool
}
