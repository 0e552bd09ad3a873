// Package cli holds the glue shared by the arbor commands: building an engine
// from the configuration file and re-rendering output when documents change.
package cli
