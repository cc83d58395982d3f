// Package archive walks a zip snapshot, strips the conventional top-level
// folder, and yields the entries the admission policy lets through.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/tilsley/bindle/apps/server/internal/importer/policy"
)

// Entry is one admitted archive member, decoded and ready for upload.
type Entry struct {
	Path string // relative path with the archive root prefix stripped
	Size int64
	Data []byte
}

// CorruptArchiveError is returned when the byte buffer cannot be opened as a
// zip archive, or an admitted member fails to decode.
type CorruptArchiveError struct {
	Err error
}

// Error implements the error interface.
func (e CorruptArchiveError) Error() string {
	return fmt.Sprintf("corrupt archive: %v", e.Err)
}

// Unwrap exposes the underlying zip error.
func (e CorruptArchiveError) Unwrap() error { return e.Err }

// Extract enumerates the archive in member order, applies the admission
// policy to every file, and returns the admitted entries plus the number of
// rejected candidates. Directory members and entries left pathless by prefix
// stripping are skipped silently and not counted.
func Extract(archiveBytes []byte) ([]Entry, int, error) {
	zr, err := zip.NewReader(bytes.NewReader(archiveBytes), int64(len(archiveBytes)))
	if err != nil {
		return nil, 0, CorruptArchiveError{Err: err}
	}

	rootPrefix := ""
	if len(zr.File) > 0 {
		rootPrefix = topSegment(zr.File[0].Name)
	}

	var entries []Entry
	skipped := 0

	for _, f := range zr.File {
		name := f.Name
		if strings.HasSuffix(name, "/") || f.FileInfo().IsDir() {
			continue
		}

		rel := stripRoot(name, rootPrefix)
		if rel == "" {
			continue
		}

		decision := policy.Admit(rel, int64(f.UncompressedSize64), len(entries))
		if !decision.Admit {
			skipped++
			continue
		}

		data, err := readMember(f)
		if err != nil {
			return nil, 0, CorruptArchiveError{Err: err}
		}

		entries = append(entries, Entry{
			Path: decision.Path,
			Size: int64(len(data)),
			Data: data,
		})
	}

	return entries, skipped, nil
}

// topSegment returns the first path segment of a member name.
func topSegment(name string) string {
	name = strings.TrimPrefix(name, "/")
	if i := strings.Index(name, "/"); i >= 0 {
		return name[:i]
	}
	return name
}

// stripRoot removes the "<root>/" prefix shared by snapshot exports. Names
// outside the root are passed through untouched.
func stripRoot(name, root string) string {
	if root == "" {
		return name
	}
	if name == root {
		return ""
	}
	return strings.TrimPrefix(name, root+"/")
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open member %q: %w", f.Name, err)
	}
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("decode member %q: %w", f.Name, err)
	}
	return data, nil
}
