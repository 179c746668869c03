// Package domain defines the core business entities for aeonsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A parsed timeline (template, entities and events)
//   - Section, Chapter, Character, Location, Item, PlotLine: Novel elements
//   - SyncSettings: Display names and feature flags used when matching
//   - SyncRun: A journal record of one synchronisation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
