package adapter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chatrecall/chatrecall/pkg/types"
)

// claudeLine is a single line of a Claude Code JSONL transcript
type claudeLine struct {
	Type      string        `json:"type"`
	IsMeta    bool          `json:"isMeta"`
	Timestamp string        `json:"timestamp"`
	Message   claudeMessage `json:"message"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// ClaudeAdapter parses Claude Code project transcripts. Each file is one
// session; the session ID is the file name without extension and the
// project identity is decoded from the parent directory name.
type ClaudeAdapter struct{}

// NewClaudeAdapter creates a Claude Code transcript adapter
func NewClaudeAdapter() *ClaudeAdapter {
	return &ClaudeAdapter{}
}

// Parse reads one Claude Code JSONL file into a Conversation.
// Malformed lines are skipped, not fatal. Returns (nil, nil) when no
// qualifying messages remain.
func (a *ClaudeAdapter) Parse(path string, info fs.FileInfo) (*types.Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer func() { _ = f.Close() }()

	var msgs []types.Message

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineBytes)
	for scanner.Scan() {
		var line claudeLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue // malformed line, skip
		}

		if line.IsMeta || line.Type == "file-history-snapshot" || line.Type == "summary" {
			continue
		}
		if line.Type != "user" && line.Type != "assistant" {
			continue
		}

		text := extractText(line.Message.Content)
		if !qualifies(text) {
			continue
		}

		ts, _ := time.Parse(time.RFC3339Nano, line.Timestamp)
		msgs = append(msgs, types.Message{
			Role:      types.Role(line.Type),
			Content:   strings.TrimSpace(text),
			Timestamp: ts,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}

	if len(msgs) == 0 {
		return nil, nil
	}

	return &types.Conversation{
		SessionID:    sessionIDFromPath(path),
		Project:      DecodeProjectDir(filepath.Base(filepath.Dir(path))),
		Messages:     msgs,
		SourcePath:   path,
		LastModified: info.ModTime(),
	}, nil
}

// sessionIDFromPath derives the session ID from the file name without
// its extension
func sessionIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DecodeProjectDir recovers the project path from a Claude Code project
// directory name. Claude Code encodes the working directory by replacing
// path separators with dashes and prefixing the result with a dash:
// "-Users-dev-myproject" decodes to "/Users/dev/myproject". Directory
// names without the leading marker are used verbatim.
func DecodeProjectDir(dir string) string {
	if !strings.HasPrefix(dir, "-") {
		return dir
	}
	return "/" + strings.ReplaceAll(strings.TrimPrefix(dir, "-"), "-", "/")
}
