package dto

import "time"

// Folder entry types. Folders are inferred from stored paths, never
// persisted, so a FOLDER entry carries no id or size.
const (
	EntryTypeFolder = "FOLDER"
	EntryTypeFile   = "FILE"
)

// FolderEntry is one row of a folder listing: either an inferred subfolder
// or a direct child file.
type FolderEntry struct {
	Type       string     `json:"type"`
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	ID         string     `json:"id,omitempty"`
	FileSize   *int64     `json:"fileSize,omitempty"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
}
