package handler

import (
	"PathVault/internal/dto"
	"PathVault/internal/service"
	"PathVault/internal/storage"
	"PathVault/utils"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Health reports service liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// UploadFile stores an uploaded file under a user's virtual path.
func UploadFile(c *gin.Context) {
	userID := strings.TrimSpace(c.PostForm("userId"))
	filePath := strings.TrimSpace(c.PostForm("filePath"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}
	if filePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filePath required"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if file.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty file"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "open upload failed: " + err.Error()})
		return
	}
	defer src.Close()

	record, err := service.UploadFile(c.Request.Context(), userID, filePath, file.Filename, file.Size, src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListFiles returns file records, newest first, optionally scoped to a user.
func ListFiles(c *gin.Context) {
	files, err := service.ListFiles(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list files failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, files)
}

// ListFolderEntries returns one level of a user's virtual folder.
func ListFolderEntries(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	folderPath := strings.TrimSpace(c.Query("folderPath"))
	if userID == "" || folderPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and folderPath required"})
		return
	}

	entries, err := service.ListFolderEntries(c.Request.Context(), userID, folderPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list folder failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// MoveFolder renames a whole folder subtree in one bulk update.
func MoveFolder(c *gin.Context) {
	var req dto.MoveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	fromPath := strings.TrimRight(strings.TrimSpace(req.FromPath), "/")
	toPath := strings.TrimRight(strings.TrimSpace(req.ToPath), "/")
	if fromPath == "" || toPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fromPath and toPath required"})
		return
	}
	if fromPath == toPath {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fromPath and toPath must differ"})
		return
	}

	updated, err := service.MoveFolder(fromPath, toPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "move folder failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// MoveFile relocates a single file record.
func MoveFile(c *gin.Context) {
	id := c.Param("id")

	var req dto.MoveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.FilePath) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filePath required"})
		return
	}

	record, err := service.MoveFile(id, req.FilePath)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "move file failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

// DownloadFile streams a file's blob as an attachment.
func DownloadFile(c *gin.Context) {
	id := c.Param("id")

	object, record, err := service.GetDownloadFile(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, service.ErrBlobMissing) {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "download failed: " + err.Error()})
		return
	}
	defer object.Close()

	fileName := utils.SanitizeHeaderFilename(record.FileName)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	c.Header("Content-Type", service.GetContentBook(fileName))
	c.Header("Content-Length", fmt.Sprintf("%d", record.FileSize))

	if _, err := io.Copy(c.Writer, object); err != nil {
		log.Println("download error:", err)
	}
}

// DeleteFile deletes the latest record at a user's virtual path.
func DeleteFile(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	filePath := strings.TrimSpace(c.Query("filePath"))
	if userID == "" || filePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and filePath required"})
		return
	}

	deleted, err := service.DeleteFile(c.Request.Context(), userID, filePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete file failed: " + err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// DeleteFolder deletes a user's folder subtree and reports the row count.
func DeleteFolder(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	folderPath := strings.TrimSpace(c.Query("folderPath"))
	if userID == "" || folderPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and folderPath required"})
		return
	}

	deleted, err := service.DeleteFolder(c.Request.Context(), userID, folderPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete folder failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// SearchFiles searches a user's files by name.
func SearchFiles(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	query := strings.TrimSpace(c.Query("query"))
	if userID == "" || query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and query required"})
		return
	}

	files, err := service.SearchFiles(userID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search files failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, files)
}

// DownloadFolderArchive streams a user's folder subtree as a zip archive.
func DownloadFolderArchive(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	folderPath := strings.TrimSpace(c.Query("folderPath"))
	if userID == "" || folderPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and folderPath required"})
		return
	}

	entries, err := service.BuildFolderArchiveEntries(userID, folderPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "build archive failed: " + err.Error()})
		return
	}
	if len(entries) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "folder not found"})
		return
	}

	name := utils.SanitizeHeaderFilename(service.NormalizeFolderPath(folderPath))
	name = strings.TrimPrefix(strings.ReplaceAll(name, "/", "_"), "_")
	if name == "" {
		name = "archive"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.zip\"", name))
	c.Header("Content-Type", "application/zip")

	zipWriter := zip.NewWriter(c.Writer)
	defer zipWriter.Close()

	for _, entry := range entries {
		object, _, err := storage.Default.GetObject(c.Request.Context(), entry.Record.ID)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		writer, err := zipWriter.Create(entry.ZipPath)
		if err != nil {
			_ = object.Close()
			c.Status(http.StatusInternalServerError)
			return
		}
		if _, err := io.Copy(writer, object); err != nil {
			_ = object.Close()
			c.Status(http.StatusInternalServerError)
			return
		}
		_ = object.Close()
	}
}
