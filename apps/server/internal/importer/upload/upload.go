// Package upload pushes extracted entries into the content store in fixed
// batches, tolerating per-entry failures.
package upload

import (
	"context"
	"log/slog"
	"mime"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tilsley/bindle/apps/server/internal/importer/archive"
	"github.com/tilsley/bindle/pkg/api"
)

const (
	// batchSize entries are uploaded concurrently, then the batch is awaited
	// before the next begins.
	batchSize = 10

	// maxKeyNameLen bounds the sanitized filename component of a storage key.
	maxKeyNameLen = 100

	defaultMimeType = "application/octet-stream"
)

// ContentStore is the narrow surface the uploader needs from object storage.
type ContentStore interface {
	// Put stores data under key and returns the store-assigned reference.
	Put(ctx context.Context, key string, data []byte, contentType string) (PutResult, error)
}

// PutResult is the durable reference a successful Put yields.
type PutResult struct {
	Key string // opaque store-assigned key
	URL string // publicly resolvable content URL
}

// Batcher uploads entries batch by batch. Construct with NewBatcher.
type Batcher struct {
	store ContentStore
	log   *slog.Logger
}

// NewBatcher creates a Batcher writing to store.
func NewBatcher(store ContentStore, log *slog.Logger) *Batcher {
	return &Batcher{store: store, log: log}
}

// UploadAll pushes every entry under keyPrefix and returns the successful
// uploads plus the number of failures. A failed entry is logged and dropped;
// it never aborts its batch or the batches after it. The result order is the
// completion order within each batch, so callers correlate by RelativePath,
// not by index.
func (b *Batcher) UploadAll(ctx context.Context, keyPrefix string, entries []archive.Entry) ([]api.UploadedFile, int) {
	var (
		mu       sync.Mutex
		uploaded []api.UploadedFile
		failed   atomic.Int64
	)

	for start := 0; start < len(entries); start += batchSize {
		end := min(start+batchSize, len(entries))

		g, gctx := errgroup.WithContext(ctx)
		for _, entry := range entries[start:end] {
			g.Go(func() error {
				file, err := b.uploadOne(gctx, keyPrefix, entry)
				if err != nil {
					failed.Add(1)
					b.log.Warn("upload failed", "path", entry.Path, "error", err)
					return nil // partial-failure tolerant: never abort the batch
				}
				mu.Lock()
				uploaded = append(uploaded, file)
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait() // goroutines always return nil
	}

	return uploaded, int(failed.Load())
}

func (b *Batcher) uploadOne(ctx context.Context, keyPrefix string, entry archive.Entry) (api.UploadedFile, error) {
	name := path.Base(entry.Path)
	key := keyPrefix + "/" + StorageKeyComponent(name) + "_" + uniqueToken()

	res, err := b.store.Put(ctx, key, entry.Data, mimeTypeFor(name))
	if err != nil {
		return api.UploadedFile{}, err
	}

	return api.UploadedFile{
		StorageKey:   res.Key,
		OriginalName: name,
		MimeType:     mimeTypeFor(name),
		SizeBytes:    entry.Size,
		RelativePath: entry.Path,
		ContentUrl:   res.URL,
	}, nil
}

// StorageKeyComponent sanitizes a filename for use inside a storage key:
// the extension is stripped, anything outside [A-Za-z0-9] becomes "_", and
// the result is truncated to 100 characters.
func StorageKeyComponent(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))

	var sb strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}

	out := sb.String()
	if out == "" {
		out = "file"
	}
	if len(out) > maxKeyNameLen {
		out = out[:maxKeyNameLen]
	}
	return out
}

func mimeTypeFor(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return defaultMimeType
}

// uniqueToken returns a short collision-avoidance suffix.
func uniqueToken() string {
	return uuid.New().String()[:8]
}
