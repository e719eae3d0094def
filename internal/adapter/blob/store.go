// Package blob stores uploaded incident photos and resolves download URLs
// for them.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is the object storage surface consumed by the sync layer.
type Store interface {
	Upload(ctx context.Context, path string, data []byte) error
	DownloadURL(ctx context.Context, path string) (string, error)
}

// DiskStore keeps blobs on the local filesystem and serves them through
// the daemon's HTTP server under /blobs/.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates a DiskStore rooted at dir. baseURL is the externally
// reachable prefix for download URLs, e.g. "http://host:8080/blobs".
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &DiskStore{root: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Upload writes one blob. Paths are flattened so an upload can never
// escape the store root.
func (s *DiskStore) Upload(_ context.Context, path string, data []byte) error {
	if err := os.WriteFile(filepath.Join(s.root, flatten(path)), data, 0o644); err != nil {
		return fmt.Errorf("upload blob %s: %w", path, err)
	}
	return nil
}

// DownloadURL resolves the public URL for a stored blob.
func (s *DiskStore) DownloadURL(_ context.Context, path string) (string, error) {
	name := flatten(path)
	if _, err := os.Stat(filepath.Join(s.root, name)); err != nil {
		return "", fmt.Errorf("blob %s: %w", path, err)
	}
	return s.baseURL + "/" + name, nil
}

// Dir reports the directory blobs are stored in, for the HTTP file server.
func (s *DiskStore) Dir() string { return s.root }

func flatten(path string) string {
	return strings.ReplaceAll(path, "/", "_")
}
