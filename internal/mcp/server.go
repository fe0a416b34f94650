package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/chatrecall/chatrecall/internal/embedder"
	"github.com/chatrecall/chatrecall/internal/indexer"
	"github.com/chatrecall/chatrecall/internal/searcher"
	"github.com/chatrecall/chatrecall/internal/store"
)

const (
	// ServerName is the MCP server name
	ServerName = "chatrecall"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"

	// EnvDBPath overrides the index database location
	EnvDBPath = "CHATRECALL_DB_PATH"
	// EnvClaudeRoot overrides the Claude Code projects root
	EnvClaudeRoot = "CHATRECALL_CLAUDE_ROOT"
	// EnvCodexRoot overrides the Codex sessions root
	EnvCodexRoot = "CHATRECALL_CODEX_ROOT"
)

// Config holds server wiring options. Zero values resolve to the
// conventional locations under the user's home directory.
type Config struct {
	DBPath     string
	ClaudeRoot string
	CodexRoot  string
	Logger     *log.Logger
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	store    *store.SQLiteStore
	embedder embedder.Embedder
	indexer  *indexer.Orchestrator
	searcher *searcher.Searcher

	claudeRoot string
	codexRoot  string
	logger     *log.Logger
}

// NewServer builds the full pipeline behind the MCP surface: store,
// embedder, orchestrator, searcher, and the registered tools.
func NewServer(cfg Config) (*Server, error) {
	if err := resolveConfig(&cfg); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index store: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	orch := indexer.New(st, emb, cfg.ClaudeRoot, cfg.CodexRoot, cfg.Logger)
	srch := searcher.New(st, emb)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:        mcpServer,
		store:      st,
		embedder:   emb,
		indexer:    orch,
		searcher:   srch,
		claudeRoot: cfg.ClaudeRoot,
		codexRoot:  cfg.CodexRoot,
		logger:     cfg.Logger,
	}
	s.registerTools()

	return s, nil
}

// resolveConfig fills empty fields from the environment, then from the
// conventional home-directory locations
func resolveConfig(cfg *Config) error {
	if cfg.DBPath == "" {
		cfg.DBPath = os.Getenv(EnvDBPath)
	}
	if cfg.ClaudeRoot == "" {
		cfg.ClaudeRoot = os.Getenv(EnvClaudeRoot)
	}
	if cfg.CodexRoot == "" {
		cfg.CodexRoot = os.Getenv(EnvCodexRoot)
	}
	if cfg.Logger == nil {
		// stdout carries the MCP protocol; everything else goes to stderr
		cfg.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	if cfg.DBPath != "" && cfg.ClaudeRoot != "" && cfg.CodexRoot != "" {
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(home, ".chatrecall", "index.db")
	}
	if cfg.ClaudeRoot == "" {
		cfg.ClaudeRoot = filepath.Join(home, ".claude", "projects")
	}
	if cfg.CodexRoot == "" {
		cfg.CodexRoot = filepath.Join(home, ".codex", "sessions")
	}
	return nil
}

// Orchestrator exposes the indexing pipeline for the change watcher
// and for startup indexing
func (s *Server) Orchestrator() *indexer.Orchestrator {
	return s.indexer
}

// Roots returns the transcript source roots the server was configured with
func (s *Server) Roots() []string {
	return []string{s.claudeRoot, s.codexRoot}
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// Close releases the store and embedder
func (s *Server) Close() error {
	if err := s.embedder.Close(); err != nil {
		s.logger.Printf("close embedder: %v", err)
	}
	return s.store.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchConversationsTool(), s.handleSearchConversations)
	s.mcp.AddTool(reindexTool(), s.handleReindex)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
