package service

import (
	"PathVault/internal/repo"
	"PathVault/model"
	"fmt"
)

// SearchFiles searches a user's files by name, newest first.
func SearchFiles(userID, query string) ([]model.FileRecord, error) {
	var files []model.FileRecord
	err := repo.Db.
		Where("user_id = ? AND file_name LIKE ?", userID, fmt.Sprintf("%%%s%%", query)).
		Order("uploaded_at DESC").
		Find(&files).Error
	return files, err
}
