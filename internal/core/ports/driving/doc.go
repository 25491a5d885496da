// Package driving declares the operations the CLI, the chat TUI and the MCP
// server call on the core. internal/core/services implements them.
package driving
