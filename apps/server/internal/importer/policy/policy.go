// Package policy decides whether an archive entry is admissible. All checks
// are pure functions; callers thread the running admitted count through Admit.
package policy

import (
	"path"
	"strings"
)

// Ceilings applied to every import. Fixed by the service contract, not
// configurable per request.
const (
	MaxSingleFileBytes = 10 << 20 // 10 MiB per file
	MaxFileCount       = 500      // admitted entries per archive
)

// blockedExtensions are never admitted, whatever the archive claims they are.
var blockedExtensions = map[string]struct{}{
	".exe": {}, ".bat": {}, ".cmd": {}, ".sh": {}, ".msi": {},
	".dll": {}, ".so": {}, ".bin": {}, ".com": {}, ".scr": {},
	".pif": {}, ".vbs": {}, ".wsf": {}, ".ps1": {},
}

// Reason classifies an admission decision.
type Reason int

// Admission reasons, in the order checks are evaluated.
const (
	ReasonOK Reason = iota
	ReasonPathTraversal
	ReasonBlockedExtension
	ReasonTooLarge
	ReasonCountLimitReached
	ReasonEmpty
)

// String returns a stable label for logging.
func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonPathTraversal:
		return "path_traversal"
	case ReasonBlockedExtension:
		return "blocked_extension"
	case ReasonTooLarge:
		return "too_large"
	case ReasonCountLimitReached:
		return "count_limit_reached"
	case ReasonEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Decision is the outcome of admitting a single candidate entry.
type Decision struct {
	Admit  bool
	Path   string // normalized path; empty when rejected for traversal
	Reason Reason
}

// SanitizePath normalizes backslashes to forward slashes and rejects absolute
// paths (leading slash or drive letter) and any path containing a ".." segment.
func SanitizePath(raw string) (string, bool) {
	p := strings.ReplaceAll(raw, `\`, "/")

	if strings.HasPrefix(p, "/") || hasDrivePrefix(p) {
		return "", false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", false
		}
	}
	return p, true
}

// IsBlockedExtension reports whether the path's lowercase extension is on the
// block-list.
func IsBlockedExtension(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	_, blocked := blockedExtensions[ext]
	return blocked
}

// Admit evaluates every check in fixed order against one candidate entry.
// admittedSoFar is the number of entries already admitted for this archive.
func Admit(rawPath string, sizeBytes int64, admittedSoFar int) Decision {
	normalized, ok := SanitizePath(rawPath)
	if !ok {
		return Decision{Reason: ReasonPathTraversal}
	}
	if IsBlockedExtension(normalized) {
		return Decision{Path: normalized, Reason: ReasonBlockedExtension}
	}
	if sizeBytes > MaxSingleFileBytes {
		return Decision{Path: normalized, Reason: ReasonTooLarge}
	}
	if admittedSoFar >= MaxFileCount {
		return Decision{Path: normalized, Reason: ReasonCountLimitReached}
	}
	// The content store rejects empty payloads, so zero-byte entries are
	// inadmissible rather than stored as placeholders.
	if sizeBytes == 0 {
		return Decision{Path: normalized, Reason: ReasonEmpty}
	}
	return Decision{Admit: true, Path: normalized, Reason: ReasonOK}
}

func hasDrivePrefix(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
