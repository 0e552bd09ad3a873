// Package text renders menu trees as console listings and Markdown.
package text
