package adapter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/chatrecall/chatrecall/pkg/types"
)

// DefaultProject is the project identity used when a Codex session
// never declares a working directory
const DefaultProject = "unknown"

// boilerplatePrefixes marks synthetic system framing that Codex records
// as user or assistant text. Messages starting with any of these are
// not human content and are dropped.
var boilerplatePrefixes = []string{
	"<user_instructions>",
	"<environment_context>",
	"<permissions",
	"<collaboration_mode>",
	"# Instructions",
}

// codexLine is a single line of a Codex session JSONL file
type codexLine struct {
	Type      string       `json:"type"`
	Timestamp string       `json:"timestamp"`
	Payload   codexPayload `json:"payload"`
}

type codexPayload struct {
	Type    string          `json:"type"`
	Role    string          `json:"role"`
	Cwd     string          `json:"cwd"`
	Content json.RawMessage `json:"content"`
}

// CodexAdapter parses Codex session transcripts. Session files nest
// arbitrarily deep under the sessions root; the project identity comes
// from the most recent session_meta record's working directory.
type CodexAdapter struct{}

// NewCodexAdapter creates a Codex transcript adapter
func NewCodexAdapter() *CodexAdapter {
	return &CodexAdapter{}
}

// Parse reads one Codex JSONL file into a Conversation.
// Malformed lines are skipped, not fatal. Returns (nil, nil) when no
// qualifying messages remain.
func (a *CodexAdapter) Parse(path string, info fs.FileInfo) (*types.Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer func() { _ = f.Close() }()

	project := DefaultProject
	var msgs []types.Message

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineBytes)
	for scanner.Scan() {
		var line codexLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue // malformed line, skip
		}

		if line.Type == "session_meta" {
			if line.Payload.Cwd != "" {
				project = line.Payload.Cwd
			}
			continue
		}

		if line.Type != "response_item" || line.Payload.Type != "message" {
			continue
		}
		if line.Payload.Role != "user" && line.Payload.Role != "assistant" {
			continue
		}

		text := extractText(line.Payload.Content)
		if isBoilerplate(text) || !qualifies(text) {
			continue
		}

		ts, _ := time.Parse(time.RFC3339Nano, line.Timestamp)
		msgs = append(msgs, types.Message{
			Role:      types.Role(line.Payload.Role),
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
		Project:      project,
		Messages:     msgs,
		SourcePath:   path,
		LastModified: info.ModTime(),
	}, nil
}

// isBoilerplate reports whether the extracted text is synthetic system
// framing rather than conversation content
func isBoilerplate(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
