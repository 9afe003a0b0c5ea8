package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// DiskStore keeps blobs as flat files under a root directory, one file per
// record id.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed and returns the store.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) blobPath(key string) string {
	return filepath.Join(s.root, key)
}

// PutObject writes a blob, overwriting any existing file at that key. The
// file is synced before returning so a metadata row is never visible ahead
// of its fully written blob.
func (s *DiskStore) PutObject(ctx context.Context, key string, reader io.Reader, size int64, opts PutOptions) error {
	file, err := os.Create(s.blobPath(key))
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// GetObject opens a blob for reading.
func (s *DiskStore) GetObject(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	file, err := os.Open(s.blobPath(key))
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, ObjectInfo{}, err
	}
	return file, ObjectInfo{Key: key, Size: stat.Size()}, nil
}

// RemoveObject deletes a blob; a missing blob is not an error.
func (s *DiskStore) RemoveObject(ctx context.Context, key string) error {
	err := os.Remove(s.blobPath(key))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// ObjectExists reports whether a blob is present on disk.
func (s *DiskStore) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.blobPath(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
