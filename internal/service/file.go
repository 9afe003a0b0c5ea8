package service

import (
	"PathVault/config"
	"PathVault/internal/dto"
	"PathVault/internal/repo"
	"PathVault/internal/storage"
	"PathVault/model"
	"PathVault/utils"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// ErrBlobMissing signals a metadata row whose blob is gone from storage.
var ErrBlobMissing = errors.New("blob missing from storage")

// invalidateFolderCache clears a user's cached folder listings.
func invalidateFolderCache(userID string) {
	_ = utils.InvalidateFolderEntriesCache(context.Background(), userID)
}

// UploadFile stores the blob first, then inserts the metadata row, so a
// record is never visible before its content is fully written.
func UploadFile(ctx context.Context, userID, filePath, originalName string, size int64, reader io.Reader) (*model.FileRecord, error) {
	if storage.Default == nil {
		return nil, fmt.Errorf("storage not initialized")
	}

	id := utils.NewFileID()
	if err := storage.Default.PutObject(ctx, id, reader, size, storage.PutOptions{
		ContentType: GetContentBook(originalName),
	}); err != nil {
		return nil, err
	}

	fileName := strings.TrimSpace(originalName)
	if fileName == "" {
		fileName = "unknown"
	}

	record := &model.FileRecord{
		ID:         id,
		UserID:     userID,
		UploadedAt: time.Now(),
		FileName:   fileName,
		FilePath:   NormalizeFilePath(filePath, fileName),
		FileSize:   size,
	}
	if err := repo.Db.Create(record).Error; err != nil {
		_ = storage.Default.RemoveObject(ctx, id)
		return nil, err
	}

	invalidateFolderCache(userID)
	return record, nil
}

// ListFiles returns records newest-first, scoped to a user when userID is
// non-blank.
func ListFiles(userID string) ([]model.FileRecord, error) {
	var files []model.FileRecord
	query := repo.Db.Model(&model.FileRecord{}).Order("uploaded_at DESC")
	if strings.TrimSpace(userID) != "" {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Find(&files).Error
	return files, err
}

// ListFolderEntries derives one level of a virtual folder from the flat
// path table: subfolders are inferred from the first segment of each path
// remainder, direct files pass through. Folders sort before files, each
// group alphabetical.
func ListFolderEntries(ctx context.Context, userID, folderPath string) ([]dto.FolderEntry, error) {
	normalized := NormalizeFolderPath(folderPath)

	if entries, ok := utils.GetFolderEntriesFromCache(ctx, userID, normalized); ok {
		return entries, nil
	}

	prefix := FolderPrefix(normalized)
	var files []model.FileRecord
	if err := repo.Db.
		Where("user_id = ? AND file_path LIKE ?", userID, prefix+"%").
		Order("file_path ASC").
		Find(&files).Error; err != nil {
		return nil, err
	}

	folderSeen := make(map[string]struct{})
	folderEntries := make([]dto.FolderEntry, 0)
	fileEntries := make([]dto.FolderEntry, 0)

	for _, file := range files {
		remainder := strings.TrimPrefix(file.FilePath, prefix)
		if remainder == "" {
			continue
		}

		if idx := strings.Index(remainder, "/"); idx >= 0 {
			childName := remainder[:idx]
			if childName == "" {
				continue
			}
			if _, ok := folderSeen[childName]; ok {
				continue
			}
			folderSeen[childName] = struct{}{}
			folderEntries = append(folderEntries, dto.FolderEntry{
				Type: dto.EntryTypeFolder,
				Name: childName,
				Path: JoinFolderPath(normalized, childName),
			})
		} else {
			size := file.FileSize
			uploadedAt := file.UploadedAt
			fileEntries = append(fileEntries, dto.FolderEntry{
				Type:       dto.EntryTypeFile,
				Name:       file.FileName,
				Path:       file.FilePath,
				ID:         file.ID,
				FileSize:   &size,
				UploadedAt: &uploadedAt,
			})
		}
	}

	sort.Slice(folderEntries, func(i, j int) bool { return folderEntries[i].Name < folderEntries[j].Name })
	sort.Slice(fileEntries, func(i, j int) bool { return fileEntries[i].Name < fileEntries[j].Name })

	entries := append(folderEntries, fileEntries...)
	_ = utils.SetFolderEntriesToCache(ctx, userID, normalized, entries, config.AppConfig.FolderCacheTTL)
	return entries, nil
}

// MoveFile relocates a single record. A trailing-slash target keeps the
// record's existing file name; move never renames.
func MoveFile(id, filePath string) (*model.FileRecord, error) {
	var existing model.FileRecord
	if err := repo.Db.Where("id = ?", id).First(&existing).Error; err != nil {
		return nil, err
	}

	normalized := NormalizeFilePath(filePath, existing.FileName)
	if err := repo.Db.Model(&model.FileRecord{}).
		Where("id = ?", id).
		Update("file_path", normalized).Error; err != nil {
		return nil, err
	}

	invalidateFolderCache(existing.UserID)
	existing.FilePath = normalized
	return &existing, nil
}

// MoveFolder rewrites every path under fromPath in one set-based UPDATE,
// so concurrent renames of disjoint subtrees cannot interleave into a
// partial state. The equality branch also catches a record whose path is
// exactly fromPath. Returns the number of rows rewritten; 0 means nothing
// matched.
func MoveFolder(fromPath, toPath string) (int64, error) {
	// SUBSTRING counts characters, not bytes.
	suffixStart := utf8.RuneCountInString(fromPath) + 1
	result := repo.Db.Model(&model.FileRecord{}).
		Where("file_path = ? OR file_path LIKE ?", fromPath, fromPath+"/%").
		Update("file_path", gorm.Expr("CONCAT(?, SUBSTRING(file_path, ?))", toPath, suffixStart))
	if result.Error != nil {
		return 0, result.Error
	}

	// Folder move is not user-scoped, so every cached listing is stale.
	_ = utils.InvalidateAllFolderEntriesCache(context.Background())
	return result.RowsAffected, nil
}

// DeleteFolder removes all of a user's records at or under a folder prefix,
// then best-effort reclaims their blobs. Rows go first: a crash in between
// leaves orphaned blobs, never dangling records.
func DeleteFolder(ctx context.Context, userID, folderPath string) (int64, error) {
	normalized := NormalizeFolderPath(folderPath)
	prefix := FolderPrefix(normalized)

	var targets []model.FileRecord
	if err := repo.Db.
		Where("user_id = ? AND file_path LIKE ?", userID, prefix+"%").
		Find(&targets).Error; err != nil {
		return 0, err
	}
	if len(targets) == 0 {
		return 0, nil
	}

	result := repo.Db.
		Where("user_id = ? AND file_path LIKE ?", userID, prefix+"%").
		Delete(&model.FileRecord{})
	if result.Error != nil {
		return 0, result.Error
	}

	for _, target := range targets {
		if err := storage.Default.RemoveObject(ctx, target.ID); err != nil {
			log.Println("remove blob failed:", target.ID, err)
		}
	}

	invalidateFolderCache(userID)
	return result.RowsAffected, nil
}

// DeleteFile removes the latest record at (userID, filePath). False means
// nothing was there; a row-delete racing to zero rows also reports false
// without touching the blob.
func DeleteFile(ctx context.Context, userID, filePath string) (bool, error) {
	trimmed := strings.TrimSpace(filePath)

	var existing model.FileRecord
	err := repo.Db.
		Where("user_id = ? AND file_path = ?", userID, trimmed).
		Order("uploaded_at DESC").
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	result := repo.Db.Where("id = ?", existing.ID).Delete(&model.FileRecord{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	_ = storage.Default.RemoveObject(ctx, existing.ID)

	invalidateFolderCache(userID)
	return true, nil
}

// GetDownloadFile resolves a record id to its blob stream. The blob's
// physical existence is checked before serving so an orphaned metadata row
// reports ErrBlobMissing instead of a broken stream.
func GetDownloadFile(ctx context.Context, id string) (io.ReadCloser, *model.FileRecord, error) {
	var record model.FileRecord
	if err := repo.Db.Where("id = ?", id).First(&record).Error; err != nil {
		return nil, nil, err
	}

	if storage.Default == nil {
		return nil, nil, fmt.Errorf("storage not initialized")
	}
	exists, err := storage.Default.ObjectExists(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, ErrBlobMissing
	}

	object, _, err := storage.Default.GetObject(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return object, &record, nil
}

// GetContentBook returns content type by file extension.
func GetContentBook(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".pdf":
		return "application/pdf"
	case ".zip":
		return "application/zip"
	case ".tar":
		return "application/x-tar"
	case ".gz":
		return "application/gzip"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
