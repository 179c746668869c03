// Package watcher reports changes to single files using fsnotify.
//
// Applications often save by writing a temporary file and renaming it over
// the existing one, which drops any watch on that file. The watcher
// therefore watches the file's directory and filters events by name.
package watcher
