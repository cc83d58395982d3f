package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tilsley/bindle/apps/server/internal/importer"
	"github.com/tilsley/bindle/apps/server/internal/importer/archive"
	"github.com/tilsley/bindle/apps/server/internal/importer/fetch"
	"github.com/tilsley/bindle/apps/server/internal/importer/gitref"
	"github.com/tilsley/bindle/pkg/api"
)

// Import handles POST /import — runs the full import pipeline and returns the
// committed container with its generated password.
func (h *Handler) Import(c *gin.Context) {
	var req api.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.svc.Import(c.Request.Context(), c.ClientIP(), req.RepoUrl, req.Branch)
	if err != nil {
		h.renderImportError(c, req.RepoUrl, err)
		return
	}

	c.JSON(http.StatusCreated, api.ImportResponse{
		ContainerId:   result.Container.Id,
		ContainerName: result.Container.Name,
		Password:      result.Container.Password,
		SandboxUrl:    result.SandboxURL,
		FileCount:     result.FileCount,
		SkippedCount:  result.SkippedCount,
		TotalSize:     result.TotalSizeBytes,
		RepoInfo:      result.RepoInfo,
	})
}

// renderImportError maps pipeline errors onto HTTP status codes. Every error
// carries a user-presentable message; internal detail stays in the log.
func (h *Handler) renderImportError(c *gin.Context, repoURL string, err error) {
	var (
		rateLimited  importer.RateLimitedError
		notGitHub    gitref.NotGitHubHostError
		missingRepo  gitref.MissingRepoSegmentError
		badIdent     gitref.InvalidIdentifierError
		repoMissing  importer.RepoNotFoundError
		branchGone   importer.BranchNotFoundError
		tooLarge     importer.RepoTooLargeError
		sizeExceeded fetch.SizeExceededError
		corrupt      archive.CorruptArchiveError
		noFiles      importer.NoAdmissibleFilesError
		allFailed    importer.UploadsFailedError
	)

	switch {
	case errors.As(err, &rateLimited):
		c.JSON(http.StatusTooManyRequests, api.ErrorResponse{Error: rateLimited.Error()})
	case errors.As(err, &notGitHub), errors.As(err, &missingRepo), errors.As(err, &badIdent):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.As(err, &repoMissing), errors.As(err, &branchGone):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.As(err, &tooLarge), errors.As(err, &sizeExceeded):
		c.JSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: err.Error()})
	case errors.As(err, &noFiles):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: noFiles.Error()})
	case errors.As(err, &corrupt), errors.As(err, &allFailed):
		h.log.Error("import failed", "repoUrl", repoURL, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
	default:
		h.log.Error("import failed", "repoUrl", repoURL, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "import failed"})
	}
}
