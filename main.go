package main

import (
	"log"

	"imagevault/config"
	"imagevault/internal/repo"
	"imagevault/internal/storage"
	"imagevault/router"
)

// main initializes services and starts the HTTP server.
func main() {
	config.InitConfig()
	repo.InitMysql()
	repo.InitRedis()
	if err := storage.Init(config.AppConfig.BlobRoot); err != nil {
		log.Fatal("init blob store fail", err)
	}

	r := router.InitRouter()
	r.Run(":8000")
}
