package service

import (
	"PathVault/internal/repo"
	"PathVault/model"
	"strings"
)

// ArchiveEntry pairs a record with its path inside a zip archive.
type ArchiveEntry struct {
	ZipPath string
	Record  model.FileRecord
}

// BuildFolderArchiveEntries collects every record under a folder prefix.
// Zip paths are the stored paths relative to the folder, so nested
// subfolders come out as zip directory structure for free.
func BuildFolderArchiveEntries(userID, folderPath string) ([]ArchiveEntry, error) {
	normalized := NormalizeFolderPath(folderPath)
	prefix := FolderPrefix(normalized)

	var files []model.FileRecord
	if err := repo.Db.
		Where("user_id = ? AND file_path LIKE ?", userID, prefix+"%").
		Order("file_path ASC").
		Find(&files).Error; err != nil {
		return nil, err
	}

	entries := make([]ArchiveEntry, 0, len(files))
	for _, file := range files {
		zipPath := strings.TrimPrefix(file.FilePath, prefix)
		if zipPath == "" {
			continue
		}
		entries = append(entries, ArchiveEntry{ZipPath: zipPath, Record: file})
	}
	return entries, nil
}
