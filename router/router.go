package router

import (
	"PathVault/internal/handler"
	"PathVault/utils"

	"github.com/gin-gonic/gin"
)

// InitRouter builds API routes.
func InitRouter() *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware())

	r.GET("/health", handler.Health)

	api := r.Group("/api")
	{
		files := api.Group("/files")
		{
			files.GET("", handler.ListFiles)
			files.DELETE("", handler.DeleteFile)
			files.POST("/upload", handler.UploadFile)
			files.GET("/search", handler.SearchFiles)
			files.GET("/folder", handler.ListFolderEntries)
			files.DELETE("/folder", handler.DeleteFolder)
			files.GET("/folder/archive", handler.DownloadFolderArchive)
			files.POST("/move-folder", handler.MoveFolder)
			files.POST("/:id/move", handler.MoveFile)
			files.GET("/:id/download", handler.DownloadFile)
		}
	}
	return r
}
