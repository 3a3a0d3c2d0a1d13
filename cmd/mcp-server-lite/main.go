// Package main provides the lightweight MCP entry point for the diabetes
// prediction engine. This version requires no external databases: reference
// data is built in and evaluation history is kept in SQLite.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/diabetes-prediction-engine/internal/config"
	"github.com/diabetes-prediction-engine/internal/mcp"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadLiteConfig()

	// stdout carries the MCP protocol, so progress goes to stderr.
	log.SetOutput(os.Stderr)
	log.Printf("Data directory: %s", cfg.DataDir)

	server, err := mcp.NewLiteServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Printf("MCP server failed: %v", err)
		return
	}

	log.Println("Diabetes prediction MCP server (lite) stopped")
}
