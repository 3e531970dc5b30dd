// Package file provides file-based configuration storage.
//
// Configuration lives in a TOML file, prompts in user-editable text
// files, both under the chatlore config directory (~/.chatlore by
// default).
package file
