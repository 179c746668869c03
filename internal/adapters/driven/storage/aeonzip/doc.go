// Package aeonzip stores timeline documents in zip archives.
//
// A timeline archive holds its payload in the timeline.json member. Other
// members, such as thumbnails written by the timeline application, are
// copied unchanged when the archive is rewritten.
//
// Saving keeps the previous archive as <path>.bak and replaces the archive
// atomically, so a failed save never leaves a truncated file behind.
package aeonzip
