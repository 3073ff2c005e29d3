package persistent

import (
	"context"
	"os"
	"path/filepath"
)

// Backend stores the encoded snapshot of named caches.
type Backend interface {
	// Read returns the snapshot stored under name. A missing snapshot is an error matching fs.ErrNotExist.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write replaces the snapshot stored under name.
	Write(ctx context.Context, name string, data []byte) error
}

// DefaultDirectory is the directory used by FileBackend when Dir is empty.
func DefaultDirectory() string {
	return filepath.Join(os.TempDir(), "loadability")
}

// FileBackend stores each snapshot in <Dir>/<name>.cache.
type FileBackend struct {
	Dir string
}

var _ Backend = FileBackend{}

// Path returns the file the snapshot of name is stored in.
func (b FileBackend) Path(name string) string {
	return filepath.Join(b.dir(), name+".cache")
}

func (b FileBackend) dir() string {
	if b.Dir == "" {
		return DefaultDirectory()
	}
	return b.Dir
}

func (b FileBackend) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(b.Path(name))
}

// Write writes data to a temporary file and renames it over the snapshot,
// so readers never observe a partially written file.
func (b FileBackend) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := b.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, b.Path(name)); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
