package importer

import "fmt"

// RateLimitedError is returned when the caller is over their import budget
// for the current window.
type RateLimitedError struct {
	Key string
}

// Error implements the error interface.
func (e RateLimitedError) Error() string {
	return fmt.Sprintf("client %q exceeded the import rate limit", e.Key)
}

// RepoNotFoundError is returned when repository metadata cannot be retrieved:
// the repository is missing, private, or the host API failed.
type RepoNotFoundError struct {
	Owner string
	Repo  string
	Err   error
}

// Error implements the error interface.
func (e RepoNotFoundError) Error() string {
	return fmt.Sprintf("repository %s/%s not found or inaccessible", e.Owner, e.Repo)
}

// Unwrap exposes the underlying host error, if any.
func (e RepoNotFoundError) Unwrap() error { return e.Err }

// BranchNotFoundError is returned when no archive could be fetched for the
// requested branch (including the single master fallback for defaulted refs).
type BranchNotFoundError struct {
	Owner  string
	Repo   string
	Branch string
}

// Error implements the error interface.
func (e BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %q not found in %s/%s", e.Branch, e.Owner, e.Repo)
}

// RepoTooLargeError is returned when the reported repository size exceeds the
// configured ceiling.
type RepoTooLargeError struct {
	SizeKB  int64
	LimitMB int
}

// Error implements the error interface.
func (e RepoTooLargeError) Error() string {
	return fmt.Sprintf("repository is %s, larger than the %d MB import ceiling",
		HumanSize(e.SizeKB), e.LimitMB)
}

// NoAdmissibleFilesError is returned when policy filtering leaves nothing to
// import from an otherwise valid archive.
type NoAdmissibleFilesError struct {
	Skipped int
}

// Error implements the error interface.
func (e NoAdmissibleFilesError) Error() string {
	return fmt.Sprintf("archive contains no admissible files (%d skipped)", e.Skipped)
}

// UploadsFailedError is returned when every upload in the batch failed; a
// container with zero files is never committed.
type UploadsFailedError struct {
	Attempted int
}

// Error implements the error interface.
func (e UploadsFailedError) Error() string {
	return fmt.Sprintf("all %d uploads failed", e.Attempted)
}
