// Package middleware decorates a ports.CursorStore.
//
// NewEncryptionMiddleware seals every cursor with AES-256-GCM before it
// reaches the backing store and supports key rotation through fallback keys.
package middleware
