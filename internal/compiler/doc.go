// Package compiler decodes single-file menu trees (.menu DSL, YAML, JSON).
package compiler
