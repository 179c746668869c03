// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - TimelineStore: Loads and saves zipped timeline documents
//   - NovelStore: Loads and saves novel projects as NovelModel values
//   - NovelModel: CRUD collections and containment tree of one novel
//   - ConfigStore: Display names and feature flags
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - JournalStore: History of synchronisation runs. Without it, runs are not recorded.
//   - ProjectLocker: Locks a novel project after export. Without it, lock_on_export is ignored.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
