// Package novx reads and writes novel projects in the novx XML format.
//
// Only the elements a synchronisation needs are decoded into the novel
// model. The full XML tree is kept alongside the model, so section prose,
// plot points and any other markup this package does not understand are
// written back unchanged.
//
// The package also provides the project lock file used by the novel
// editor to mark a project as open.
package novx
