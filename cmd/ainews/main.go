package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"ainews/internal/config"
	"ainews/internal/feed"
	"ainews/internal/logger"
	"ainews/internal/server"
)

func main() {
	// .env is optional; set variables always win over the file.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.Debug)

	fetcher := feed.NewFetcher(cfg.FeedURL, cfg.Query, cfg.MaxItems, cfg.RequestTimeout)
	srv := server.New(cfg, fetcher)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("server started", "addr", addr)
	if err := http.ListenAndServe(addr, srv); err != nil {
		log.Fatalf("Ошибка HTTP-сервера: %v", err)
	}
}
