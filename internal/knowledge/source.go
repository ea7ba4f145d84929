package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DocumentSource fetches one knowledge document by identifier. A failed read
// is a per-document condition: the store skips the document and keeps loading.
type DocumentSource interface {
	ReadDocument(ctx context.Context, id string) (string, error)
}

// FileSource reads knowledge documents from a directory on disk.
type FileSource struct {
	dir string
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// ReadDocument reads the document with the given identifier from disk.
func (s *FileSource) ReadDocument(_ context.Context, id string) (string, error) {
	if strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid document id %q", id)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Clean(id)))
	if err != nil {
		return "", fmt.Errorf("failed to read document %q: %w", id, err)
	}
	return string(data), nil
}
