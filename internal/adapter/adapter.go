package adapter

import (
	"encoding/json"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/chatrecall/chatrecall/pkg/types"
)

const (
	// MinMessageLength is the minimum trimmed length for a message to qualify
	MinMessageLength = 20

	// maxLineBytes is the scanner buffer limit for a single JSONL line.
	// Assistant turns with large pasted context routinely exceed the
	// bufio default.
	maxLineBytes = 10 * 1024 * 1024
)

// Adapter turns one raw transcript log file into a normalized Conversation.
// Returns (nil, nil) when the file parses but yields zero qualifying
// messages; that is the normal "nothing of interest" outcome, distinct
// from a read failure on the file itself.
type Adapter interface {
	Parse(path string, info fs.FileInfo) (*types.Conversation, error)
}

// Router dispatches a file path to the adapter for its source root.
// Exactly two formats exist and each is fixed by directory location, so
// routing is a closed check on root membership rather than open-ended
// dispatch.
type Router struct {
	codexRoot string
	claude    *ClaudeAdapter
	codex     *CodexAdapter
}

// NewRouter creates a router over the two supported source roots
func NewRouter(claudeRoot, codexRoot string) *Router {
	return &Router{
		codexRoot: codexRoot,
		claude:    NewClaudeAdapter(),
		codex:     NewCodexAdapter(),
	}
}

// For returns the adapter responsible for the given path
func (r *Router) For(path string) Adapter {
	if isUnder(path, r.codexRoot) {
		return r.codex
	}
	return r.claude
}

// Parse routes the file to its adapter and parses it
func (r *Router) Parse(path string, info fs.FileInfo) (*types.Conversation, error) {
	return r.For(path).Parse(path, info)
}

// isUnder reports whether path lies under root
func isUnder(path, root string) bool {
	if root == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// contentBlock is one typed block in a structured message content array
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// extractText pulls displayable text out of a message content field.
// Content may be a plain string or a list of typed blocks; the text of
// displayable blocks is concatenated with newlines. Everything else
// (tool_use, tool_result, thinking, images) contributes nothing.
func extractText(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}

	var sb strings.Builder
	for _, b := range blocks {
		if !isTextBlock(b.Type) || b.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(b.Text)
	}
	return sb.String()
}

// isTextBlock reports whether a content block type denotes displayable
// text. Claude Code uses "text"; Codex uses "input_text" and
// "output_text" for the same thing.
func isTextBlock(blockType string) bool {
	switch blockType {
	case "text", "input_text", "output_text":
		return true
	default:
		return false
	}
}

// qualifies applies the shared content filters: non-empty after
// extraction, not a command invocation, and at least MinMessageLength
// characters after trimming.
func qualifies(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "<command-") {
		return false
	}
	return len(trimmed) >= MinMessageLength
}
