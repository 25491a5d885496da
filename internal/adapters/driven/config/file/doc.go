// Package file provides file-backed implementations of driven ports.
//
// Adapters:
//   - ConfigStore: TOML settings at ~/.houseplan/config.toml with
//     HOUSEPLAN_* environment overrides
//   - PromptStore: editable text/template prompts under ~/.houseplan/prompts
package file
