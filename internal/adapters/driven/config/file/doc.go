// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (~/.medichat/config.toml)
//   - PromptStore: user-editable prompt and email templates (~/.medichat/prompts)
package file
