// Package file keeps menu trees and traversal cursors on the local filesystem.
//
// Loader reads whole-tree files (.menu DSL, YAML or JSON) from a directory or
// a single file. Store writes cursors as JSON files with atomic renames.
package file
