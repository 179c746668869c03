// Package services implements the driving port interfaces.
// Services contain the core synchronisation logic and orchestrate
// calls to driven ports (adapters).
//
// The merge engine is split by concern:
//
//   - SchemaReconciler: finds or fabricates template types, roles and properties
//   - EntityResolver: maps entities to characters, locations, items and plot lines
//   - TemporalConverter: timestamps, dates, durations and moon phases
//   - Merger: the read (timeline to novel) and write (novel to timeline) paths
//   - SyncService: direction selection, loading, single commit and journaling
//
// Services are pure Go with no CGO and only small utility dependencies.
package services
