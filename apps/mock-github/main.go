// mock-github is a local stand-in for api.github.com and codeload.github.com.
// It serves seeded repository metadata and branch zip snapshots so the import
// pipeline can run end to end without network access or API tokens.
//
// Point the server at it with:
//
//	GITHUB_API_URL=http://localhost:9090
//	GITHUB_CODELOAD_URL=http://localhost:9090/codeload
package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// repoState is one seeded repository: metadata plus per-branch file trees.
type repoState struct {
	Owner         string
	Repo          string
	Description   string
	Stars         int
	Forks         int
	Language      string
	SizeKB        int
	DefaultBranch string
	Branches      map[string]map[string]string // branch → path → content
}

// store holds seeded repos keyed by "owner/repo".
type store struct {
	mu    sync.RWMutex
	repos map[string]*repoState
}

func newStore() *store {
	return &store{repos: make(map[string]*repoState)}
}

func (s *store) add(r *repoState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos[strings.ToLower(r.Owner+"/"+r.Repo)] = r
}

func (s *store) get(owner, repo string) *repoState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repos[strings.ToLower(owner+"/"+repo)]
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	s := newStore()

	if err := seedRepos(s); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
	log.Info("seeded repos", "count", len(s.repos))

	r := gin.Default()
	registerRoutes(r, s, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "9090"
	}

	log.Info("mock-github starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func registerRoutes(r *gin.Engine, s *store, log *slog.Logger) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Repository metadata, shaped like GET /repos/{owner}/{repo} on the real
	// API. Only the fields the importer reads are populated.
	r.GET("/repos/:owner/:repo", func(c *gin.Context) {
		repo := s.get(c.Param("owner"), c.Param("repo"))
		if repo == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"name":             repo.Repo,
			"full_name":        repo.Owner + "/" + repo.Repo,
			"private":          false,
			"description":      repo.Description,
			"stargazers_count": repo.Stars,
			"forks_count":      repo.Forks,
			"language":         repo.Language,
			"size":             repo.SizeKB,
			"default_branch":   repo.DefaultBranch,
		})
	})

	// Branch snapshot entry point. Like the real codeload host this answers
	// with a redirect, which also exercises the importer's redirect handling.
	r.GET("/codeload/:owner/:repo/zip/refs/heads/*branch", func(c *gin.Context) {
		owner, repoName := c.Param("owner"), c.Param("repo")
		branch := strings.TrimPrefix(c.Param("branch"), "/")

		repo := s.get(owner, repoName)
		if repo == nil || repo.Branches[branch] == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
			return
		}
		c.Redirect(http.StatusFound,
			fmt.Sprintf("/archives/%s/%s/%s", owner, repoName, branch))
	})

	// Archive delivery. The zip wraps every file under a single
	// "{repo}-{branch}/" root directory, matching codeload output.
	r.GET("/archives/:owner/:repo/*branch", func(c *gin.Context) {
		owner, repoName := c.Param("owner"), c.Param("repo")
		branch := strings.TrimPrefix(c.Param("branch"), "/")

		repo := s.get(owner, repoName)
		if repo == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
			return
		}
		files := repo.Branches[branch]
		if files == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
			return
		}

		buf, err := buildArchive(repo.Repo, branch, files)
		if err != nil {
			log.Error("archive build failed", "repo", owner+"/"+repoName, "branch", branch, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "archive build failed"})
			return
		}

		log.Info("archive served", "repo", owner+"/"+repoName, "branch", branch, "bytes", len(buf))
		c.Header("Content-Disposition",
			fmt.Sprintf("attachment; filename=%s-%s.zip", repoName, sanitizeBranch(branch)))
		c.Data(http.StatusOK, "application/zip", buf)
	})
}

// buildArchive zips the branch files under a codeload-style root directory.
// Entries are written in sorted path order so output is deterministic.
func buildArchive(repo, branch string, files map[string]string) ([]byte, error) {
	root := fmt.Sprintf("%s-%s/", repo, sanitizeBranch(branch))

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, p := range paths {
		f, err := w.Create(root + p)
		if err != nil {
			return nil, err
		}
		if _, err := f.Write([]byte(files[p])); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sanitizeBranch mirrors codeload's root naming for branches with slashes:
// "feature/login" becomes "feature-login".
func sanitizeBranch(branch string) string {
	return strings.ReplaceAll(branch, "/", "-")
}
