package dto

type MoveFileRequest struct {
	FilePath string `json:"filePath" binding:"required"`
}

type MoveFolderRequest struct {
	FromPath string `json:"fromPath" binding:"required"`
	ToPath   string `json:"toPath" binding:"required"`
}
