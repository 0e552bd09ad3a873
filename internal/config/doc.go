// Package config loads CLI settings from arbor.yaml and ARBOR_* environment variables.
package config
