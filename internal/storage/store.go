package storage

import (
	"PathVault/config"
	"context"
	"io"
	"log"
)

// PutOptions describes upload options for blob storage.
type PutOptions struct {
	ContentType string
}

// ObjectInfo describes a stored blob.
type ObjectInfo struct {
	Key  string
	Size int64
}

// Store abstracts blob storage. Blobs are addressed solely by the file
// record id; a missing key on remove is not an error.
type Store interface {
	PutObject(ctx context.Context, key string, reader io.Reader, size int64, opts PutOptions) error
	GetObject(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	RemoveObject(ctx context.Context, key string) error
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// Default is the main blob store instance.
var Default Store

// InitStorage initializes the configured blob store backend.
func InitStorage() {
	cfg := config.StorageConfigInstance
	switch cfg.Backend {
	case "minio":
		InitMinio()
	default:
		store, err := NewDiskStore(cfg.RootDir)
		if err != nil {
			log.Fatalln("init disk storage fail:", err)
		}
		Default = store
		log.Println("init disk storage success, dir:", cfg.RootDir)
	}
}
