// Package driving defines the interfaces the CLI calls into: synchronising
// a file, watching a timeline, reading the sync journal and editing
// settings.
//
// Implementations live in internal/core/services.
package driving
