package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/chatrecall/chatrecall/internal/mcp"
	"github.com/chatrecall/chatrecall/internal/store"
	"github.com/chatrecall/chatrecall/internal/watcher"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("ChatRecall MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", store.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", store.DriverName)
		fmt.Printf("Vector Extension: %v\n", store.VectorExtensionAvailable)
		os.Exit(0)
	}

	// Log startup info to stderr (stdout reserved for MCP protocol)
	logger := log.New(os.Stderr, "", log.LstdFlags)
	logger.Printf("ChatRecall MCP Server v%s starting...", version)
	logger.Printf("Build Mode: %s, Driver: %s, Vector Extension: %v",
		store.BuildMode, store.DriverName, store.VectorExtensionAvailable)

	server, err := mcp.NewServer(mcp.Config{Logger: logger})
	if err != nil {
		logger.Fatalf("Failed to create MCP server: %v", err)
	}
	defer func() { _ = server.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(server.Orchestrator(), server.Roots(), logger)
	if err != nil {
		logger.Fatalf("Failed to create watcher: %v", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Println("MCP server ready, listening on stdio...")
		return server.Serve(ctx)
	})

	g.Go(func() error {
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		<-ctx.Done()
		w.Stop()
		return nil
	})

	// Catch up on anything that changed while the server was down.
	// A failure here is survivable; the reindex tool can retry.
	g.Go(func() error {
		if _, err := server.Orchestrator().Run(ctx, false); err != nil && ctx.Err() == nil {
			logger.Printf("startup indexing: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Println("Server stopped")
}
