// Package adapter normalizes coding-assistant transcript logs into the
// shared conversation model.
//
// Two log formats are supported, each fixed by its source root:
//
//   - Claude Code: one JSONL file per session under
//     ~/.claude/projects/<encoded-project-dir>/. The project path is
//     decoded from the directory name.
//   - Codex: session JSONL files nested arbitrarily deep under
//     ~/.codex/sessions/. The project comes from session_meta records.
//
// # Routing
//
// A Router picks the adapter by root membership:
//
//	r := adapter.NewRouter(claudeRoot, codexRoot)
//	conv, err := r.Parse(path, info)
//
// # Filtering
//
// Both adapters apply the same content filters: malformed JSONL lines are
// skipped silently, non-message records are ignored, and messages that
// are empty, command invocations, or shorter than 20 characters after
// trimming are dropped. The Codex adapter additionally drops synthetic
// instruction/environment banners.
//
// A file that yields zero qualifying messages is not an error; Parse
// returns (nil, nil) and the caller treats the file as processed with
// nothing added.
package adapter
