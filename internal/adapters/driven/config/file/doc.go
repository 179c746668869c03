// Package file stores aeonsync settings as TOML.
//
// The global file lives in the config directory. A project may carry its own
// aeonsync.toml next to its files, read through WithOverlay.
package file
