package config

import "sync"

// StorageConfig holds blob storage settings. The values are fixed at
// startup; nothing mutates them afterwards.
type StorageConfig struct {
	Backend string `json:"backend"` // disk or minio
	RootDir string `json:"root_dir"`
	Bucket  string `json:"bucket"`
}

var StorageConfigInstance *StorageConfig
var storageConfigOnce sync.Once

// InitStorageConfig initializes storage config.
func InitStorageConfig() {
	storageConfigOnce.Do(func() {
		StorageConfigInstance = &StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "disk"),
			RootDir: getEnv("STORAGE_DIR", "./data/blobs"),
			Bucket:  getEnv("BUCKET_NAME", "pathvault"),
		}
	})
}
