package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tilsley/bindle/apps/server/internal/importer/archive"
	"github.com/tilsley/bindle/apps/server/internal/importer/fetch"
	"github.com/tilsley/bindle/apps/server/internal/importer/gitref"
	"github.com/tilsley/bindle/pkg/api"
)

// Service is the application-level orchestrator for repository imports.
// It depends only on port interfaces — no framework imports.
type Service struct {
	host       RepoHost
	uploader   Uploader
	containers ContainerStore
	limiter    Limiter
	log        *slog.Logger

	maxRepoSizeMB int
	publicBaseURL string
}

// NewService creates a Service.
func NewService(
	host RepoHost,
	uploader Uploader,
	containers ContainerStore,
	limiter Limiter,
	maxRepoSizeMB int,
	publicBaseURL string,
	log *slog.Logger,
) *Service {
	return &Service{
		host:          host,
		uploader:      uploader,
		containers:    containers,
		limiter:       limiter,
		log:           log,
		maxRepoSizeMB: maxRepoSizeMB,
		publicBaseURL: publicBaseURL,
	}
}

// Import runs the full pipeline for one invocation: rate check, parse,
// metadata fetch, size gate, archive fetch (single master fallback when the
// branch was defaulted), extraction, bulk upload, container commit. Every
// failure is terminal for the invocation; nothing is retried beyond the
// branch fallback.
func (s *Service) Import(ctx context.Context, clientKey, rawURL, branchOverride string) (*ImportResult, error) {
	if !s.limiter.Allow(clientKey) {
		return nil, RateLimitedError{Key: clientKey}
	}

	ref, err := gitref.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if branchOverride != "" {
		ref.Branch = branchOverride
		ref.BranchExplicit = true
	}

	meta, err := s.host.Metadata(ctx, ref.Owner, ref.Repo)
	if err != nil {
		var notFound RepoNotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, RepoNotFoundError{Owner: ref.Owner, Repo: ref.Repo, Err: err}
	}

	if meta.SizeKB > int64(s.maxRepoSizeMB)*1024 {
		return nil, RepoTooLargeError{SizeKB: meta.SizeKB, LimitMB: s.maxRepoSizeMB}
	}

	archiveBytes, branch, err := s.fetchArchive(ctx, ref)
	if err != nil {
		return nil, err
	}

	entries, skipped, err := archive.Extract(archiveBytes)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, NoAdmissibleFilesError{Skipped: skipped}
	}

	containerID := uuid.New().String()
	files, failed := s.uploader.UploadAll(ctx, containerID, entries)
	if len(files) == 0 {
		return nil, UploadsFailedError{Attempted: len(entries)}
	}
	if failed > 0 {
		s.log.Warn("import completed with upload failures",
			"repo", ref.Owner+"/"+ref.Repo, "failed", failed, "uploaded", len(files))
	}

	repoInfo := api.RepoInfo{
		Owner:       ref.Owner,
		Repo:        ref.Repo,
		Branch:      branch,
		Description: meta.Description,
		Stars:       meta.Stars,
		Language:    meta.Language,
	}

	container, err := s.commit(ctx, containerID, ref, repoInfo, files)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, f := range files {
		total += f.SizeBytes
	}

	s.log.Info("repository imported",
		"repo", ref.Owner+"/"+ref.Repo, "branch", branch,
		"container", container.Name, "files", len(files), "skipped", skipped)

	return &ImportResult{
		Container:      *container,
		SandboxURL:     s.publicBaseURL + "/c/" + container.Name,
		FileCount:      len(files),
		SkippedCount:   skipped,
		TotalSizeBytes: total,
		RepoInfo:       repoInfo,
	}, nil
}

// Info inspects a repository without importing it.
func (s *Service) Info(ctx context.Context, rawURL string) (*api.InfoResponse, error) {
	ref, err := gitref.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	meta, err := s.host.Metadata(ctx, ref.Owner, ref.Repo)
	if err != nil {
		var notFound RepoNotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, RepoNotFoundError{Owner: ref.Owner, Repo: ref.Repo, Err: err}
	}

	return &api.InfoResponse{
		Owner:         ref.Owner,
		Repo:          ref.Repo,
		Branch:        ref.Branch,
		Description:   meta.Description,
		Stars:         meta.Stars,
		Forks:         meta.Forks,
		Language:      meta.Language,
		Size:          meta.SizeKB,
		SizeHuman:     HumanSize(meta.SizeKB),
		IsTooBig:      meta.SizeKB > int64(s.maxRepoSizeMB)*1024,
		DefaultBranch: meta.DefaultBranch,
	}, nil
}

// fetchArchive downloads the branch snapshot. When the branch was defaulted
// (not requested explicitly) and the first fetch fails, it retries once
// against "master" — the only automatic retry in the pipeline.
func (s *Service) fetchArchive(ctx context.Context, ref gitref.Ref) ([]byte, string, error) {
	maxBytes := int64(s.maxRepoSizeMB) << 20

	buf, err := s.host.Archive(ctx, ref.Owner, ref.Repo, ref.Branch, maxBytes)
	if err == nil {
		return buf, ref.Branch, nil
	}

	// An oversized snapshot is a quota failure, not a missing branch, and the
	// fallback branch would be no smaller.
	var tooBig fetch.SizeExceededError
	if errors.As(err, &tooBig) {
		return nil, "", err
	}

	if !ref.BranchExplicit && ref.Branch != "master" {
		s.log.Debug("archive fetch failed, retrying against master",
			"repo", ref.Owner+"/"+ref.Repo, "branch", ref.Branch, "error", err)
		buf, err = s.host.Archive(ctx, ref.Owner, ref.Repo, "master", maxBytes)
		if err == nil {
			return buf, "master", nil
		}
		if errors.As(err, &tooBig) {
			return nil, "", err
		}
	}

	return nil, "", BranchNotFoundError{Owner: ref.Owner, Repo: ref.Repo, Branch: ref.Branch}
}

// commit persists the container, appending a short random suffix when the
// derived name is taken. The check-then-insert is best effort: two identical
// concurrent imports can both see "not exists", which is accepted.
func (s *Service) commit(ctx context.Context, id string, ref gitref.Ref, info api.RepoInfo, files []api.UploadedFile) (*api.Container, error) {
	name := DeriveContainerName(ref.Owner, ref.Repo)

	existing, err := s.containers.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check container name %q: %w", name, err)
	}
	if existing != nil {
		name = name + "-" + shortSuffix()
	}

	c := api.Container{
		Id:        id,
		Name:      name,
		Password:  NewPassword(),
		CreatedAt: time.Now().UTC(),
		Source:    info,
		Files:     files,
	}
	if err := s.containers.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save container %q: %w", name, err)
	}
	return &c, nil
}
