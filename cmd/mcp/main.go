package main

import (
	"context"
	"log"

	"github.com/Leganyst/booking-core/internal/app"
	"github.com/Leganyst/booking-core/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// stdout занят протоколом MCP
	cfg.Log.Output = "stderr"

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("init app: %v", err)
	}
	defer a.Close(context.Background())

	if err := a.RunStdio(); err != nil {
		log.Printf("mcp stdio: %v", err)
	}
}
