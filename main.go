package main

import (
	"PathVault/config"
	"PathVault/internal/repo"
	"PathVault/internal/storage"
	"PathVault/router"
)

// main initializes services and starts the HTTP server.
func main() {
	config.InitConfig()
	repo.InitMysql()
	repo.InitRedis()
	storage.InitStorage()

	router := router.InitRouter()

	router.Run(config.AppConfig.ListenAddr)
}
