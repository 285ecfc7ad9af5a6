// Package storage defines the file-system abstraction for content and build output.
package storage

import "time"

// FileInfo describes one content document found by List.
type FileInfo struct {
	Path      string
	UpdatedAt time.Time
}

// Provider is the interface for reading content and writing build output.
// All paths are relative to the provider root and use forward slashes.
type Provider interface {
	// List returns every content document (.md, .mdx) under dir, sorted by path.
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path. It reports whether the file
	// changed; identical content is left untouched.
	Write(path string, content []byte) (bool, error)
	// Prune removes every regular file under the root that is not in keep.
	Prune(keep map[string]struct{}) ([]string, error)
}
