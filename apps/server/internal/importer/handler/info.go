package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tilsley/bindle/apps/server/internal/importer"
	"github.com/tilsley/bindle/apps/server/internal/importer/gitref"
	"github.com/tilsley/bindle/pkg/api"
)

// Info handles GET /info?url=… — previews repository metadata without
// importing anything.
func (h *Handler) Info(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "query parameter 'url' is required"})
		return
	}

	info, err := h.svc.Info(c.Request.Context(), rawURL)
	if err != nil {
		var (
			notGitHub   gitref.NotGitHubHostError
			missingRepo gitref.MissingRepoSegmentError
			badIdent    gitref.InvalidIdentifierError
			repoMissing importer.RepoNotFoundError
		)
		switch {
		case errors.As(err, &notGitHub), errors.As(err, &missingRepo), errors.As(err, &badIdent):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.As(err, &repoMissing):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		default:
			h.log.Error("repo info failed", "url", rawURL, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch repository info"})
		}
		return
	}

	c.JSON(http.StatusOK, info)
}
