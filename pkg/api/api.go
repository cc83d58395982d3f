// Package api defines the JSON wire types shared by the bindle server,
// its stores, and external clients. Field casing follows the public API
// contract, not Go initialism conventions.
package api

import "time"

// ImportRequest is the body of POST /import.
type ImportRequest struct {
	RepoUrl string `json:"repoUrl" binding:"required"`
	Branch  string `json:"branch,omitempty"`
}

// RepoInfo is the repository summary embedded in import results.
type RepoInfo struct {
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	Branch      string `json:"branch"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Language    string `json:"language"`
}

// ImportResponse is the 201 body of POST /import.
type ImportResponse struct {
	ContainerId   string   `json:"containerId"`
	ContainerName string   `json:"containerName"`
	Password      string   `json:"password"`
	SandboxUrl    string   `json:"sandboxUrl"`
	FileCount     int      `json:"fileCount"`
	SkippedCount  int      `json:"skippedCount"`
	TotalSize     int64    `json:"totalSize"`
	RepoInfo      RepoInfo `json:"repoInfo"`
}

// InfoResponse is the 200 body of GET /info.
type InfoResponse struct {
	Owner         string `json:"owner"`
	Repo          string `json:"repo"`
	Branch        string `json:"branch"`
	Description   string `json:"description"`
	Stars         int    `json:"stars"`
	Forks         int    `json:"forks"`
	Language      string `json:"language"`
	Size          int64  `json:"size"`      // repository size in KB, as reported upstream
	SizeHuman     string `json:"sizeHuman"` // e.g. "4.2 MB"
	IsTooBig      bool   `json:"isTooBig"`
	DefaultBranch string `json:"defaultBranch"`
}

// UploadedFile is one stored file inside a container.
type UploadedFile struct {
	StorageKey   string `json:"storageKey"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	SizeBytes    int64  `json:"sizeBytes"`
	RelativePath string `json:"relativePath"`
	ContentUrl   string `json:"contentUrl"`
}

// Container is the persisted aggregate a successful import produces.
type Container struct {
	Id        string         `json:"id"`
	Name      string         `json:"name"`
	Password  string         `json:"password"`
	CreatedAt time.Time      `json:"createdAt"`
	Source    RepoInfo       `json:"source"`
	Files     []UploadedFile `json:"files"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
