package model

import "time"

// FileRecord is one row per physical upload. The ID doubles as the blob
// storage key; FilePath is the only mutable column.
type FileRecord struct {
	ID string `gorm:"column:id;primaryKey;size:36" json:"id"`

	UserID string `gorm:"column:user_id;size:64;not null;index:idx_user_path,priority:1" json:"userId"`

	// datetime(6) so that latest-by-upload tie breaks survive MySQL rounding.
	UploadedAt time.Time `gorm:"column:uploaded_at;type:datetime(6);not null" json:"uploadedAt"`

	FileName string `gorm:"column:file_name;size:255;not null" json:"fileName"`

	// Full virtual path, '/'-separated. Folders are never stored; they are
	// derived from these paths at read time.
	FilePath string `gorm:"column:file_path;size:512;not null;index:idx_user_path,priority:2" json:"filePath"`

	FileSize int64 `gorm:"column:file_size;not null" json:"fileSize"`
}

// TableName returns the database table name.
func (FileRecord) TableName() string {
	return "files"
}
