package main

import (
	"context"
	"log"

	"github.com/Leganyst/booking-core/internal/app"
	"github.com/Leganyst/booking-core/internal/config"
)

func main() {
	// 1. Конфиг из env (и .env, если есть).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2. Хранилище, брокер, сервисы.
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("init app: %v", err)
	}

	// 3. REST + MCP over HTTP + gRPC health до сигнала.
	if err := a.Run(); err != nil {
		log.Fatalf("run: %v", err)
	}
}
