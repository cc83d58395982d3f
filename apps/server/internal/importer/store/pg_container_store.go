package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tilsley/bindle/apps/server/internal/importer"
	"github.com/tilsley/bindle/pkg/api"
)

// Compile-time check: *PGContainerStore implements importer.ContainerStore.
var _ importer.ContainerStore = (*PGContainerStore)(nil)

// PGContainerStore implements ContainerStore using PostgreSQL. The container
// row carries the repo source as JSONB; files live in their own table.
type PGContainerStore struct {
	pool *pgxpool.Pool
}

// NewPGContainerStore creates a new PGContainerStore.
func NewPGContainerStore(pool *pgxpool.Pool) *PGContainerStore {
	return &PGContainerStore{pool: pool}
}

// Save inserts the container and its file list within a transaction.
// Containers are append-only; Save is never called twice for the same ID.
func (s *PGContainerStore) Save(ctx context.Context, c api.Container) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	source, err := json.Marshal(c.Source)
	if err != nil {
		return fmt.Errorf("marshal source: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO containers (id, name, password, created_at, source)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.Id, c.Name, c.Password, c.CreatedAt, source)
	if err != nil {
		return fmt.Errorf("insert container %q: %w", c.Id, err)
	}

	for _, f := range c.Files {
		_, err = tx.Exec(ctx,
			`INSERT INTO container_files
			   (container_id, storage_key, original_name, mime_type, size_bytes, relative_path, content_url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.Id, f.StorageKey, f.OriginalName, f.MimeType, f.SizeBytes, f.RelativePath, f.ContentUrl)
		if err != nil {
			return fmt.Errorf("insert file %q: %w", f.RelativePath, err)
		}
	}

	return tx.Commit(ctx)
}

// Get retrieves a container by ID with its files. Returns nil, nil if not found.
func (s *PGContainerStore) Get(ctx context.Context, id string) (*api.Container, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, password, created_at, source FROM containers WHERE id = $1`, id)
	return s.scanWithFiles(ctx, row)
}

// GetByName retrieves a container by case-insensitive exact name match.
// Returns nil, nil if not found.
func (s *PGContainerStore) GetByName(ctx context.Context, name string) (*api.Container, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, password, created_at, source
		 FROM containers WHERE LOWER(name) = LOWER($1)
		 ORDER BY created_at LIMIT 1`, name)
	return s.scanWithFiles(ctx, row)
}

func (s *PGContainerStore) scanWithFiles(ctx context.Context, row pgx.Row) (*api.Container, error) {
	var (
		c      api.Container
		source []byte
	)
	err := row.Scan(&c.Id, &c.Name, &c.Password, &c.CreatedAt, &source)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil //nolint:nilnil // caller checks nil value to detect "not found"
	}
	if err != nil {
		return nil, fmt.Errorf("scan container: %w", err)
	}
	if err := json.Unmarshal(source, &c.Source); err != nil {
		return nil, fmt.Errorf("unmarshal source for %q: %w", c.Id, err)
	}

	files, err := s.queryFiles(ctx, c.Id)
	if err != nil {
		return nil, err
	}
	c.Files = files
	return &c, nil
}

func (s *PGContainerStore) queryFiles(ctx context.Context, containerID string) ([]api.UploadedFile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT storage_key, original_name, mime_type, size_bytes, relative_path, content_url
		 FROM container_files WHERE container_id = $1 ORDER BY id`, containerID)
	if err != nil {
		return nil, fmt.Errorf("query files for %q: %w", containerID, err)
	}
	defer rows.Close()

	var files []api.UploadedFile
	for rows.Next() {
		var f api.UploadedFile
		if err := rows.Scan(&f.StorageKey, &f.OriginalName, &f.MimeType,
			&f.SizeBytes, &f.RelativePath, &f.ContentUrl); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}
