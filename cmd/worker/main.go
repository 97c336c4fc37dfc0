package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"imagevault/config"
	"imagevault/internal/repo"
	"imagevault/internal/storage"
	"imagevault/internal/worker"
)

func main() {
	config.InitConfig()
	repo.InitMysql()
	repo.InitRedis()
	if err := storage.Init(config.AppConfig.BlobRoot); err != nil {
		log.Fatal("init blob store fail", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("processing worker started")
	if err := worker.Run(ctx); err != nil {
		log.Fatalf("processing worker stopped: %v", err)
	}
}
