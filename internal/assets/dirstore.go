package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DirStore is a Store backed by a flat directory of image files named
// "<id>.<ext>". It stands in for the platform photo library: IDs stay
// opaque to callers, and the format tag is sniffed from file content with
// the extension as fallback.
type DirStore struct {
	root       string
	capability Capability
}

// NewDirStore creates a directory-backed store rooted at root. The
// capability is fixed for the store's lifetime, mirroring the one-shot
// permission decision of the real photo library.
func NewDirStore(root string, capability Capability) (*DirStore, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("asset root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset root %s is not a directory", root)
	}
	return &DirStore{root: root, capability: capability}, nil
}

// Authorization returns the configured capability.
func (s *DirStore) Authorization(ctx context.Context) Capability {
	return s.capability
}

// dirHandle references one file in the store directory.
type dirHandle struct {
	id   string
	path string
}

func (h *dirHandle) ID() string { return h.id }

// Lookup scans the root directory for a file whose name without extension
// equals id. IDs are matched literally, never as patterns.
func (s *DirStore) Lookup(ctx context.Context, id string) (Handle, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading asset root: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.TrimSuffix(name, filepath.Ext(name)) == id {
			return &dirHandle{id: id, path: filepath.Join(s.root, name)}, nil
		}
	}

	return nil, ErrNotFound
}

// Retrieve reads the full file content and sniffs its format tag. The
// quality and network options have no effect for local files.
func (s *DirStore) Retrieve(ctx context.Context, h Handle, opts RetrieveOptions) ([]byte, string, error) {
	dh, ok := h.(*dirHandle)
	if !ok {
		return nil, "", fmt.Errorf("foreign handle %T: %w", h, ErrLoadFailure)
	}

	data, err := os.ReadFile(dh.path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", dh.path, err)
	}

	return data, formatTag(dh.path, data), nil
}

// formatTag derives the opaque format identifier for a file. Content
// sniffing wins; an unrecognized blob falls back to the file extension.
func formatTag(path string, data []byte) string {
	mt := mimetype.Detect(data)
	if mt.Is("application/octet-stream") {
		return strings.TrimPrefix(filepath.Ext(path), ".")
	}
	return mt.String()
}
