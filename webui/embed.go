// Package webui exposes the embedded report page.
// It lives at the module root to embed the sibling "web/" directory;
// internal/server/embed.go serves it.
package webui

import "embed"

// FS is the embedded web directory tree.
//
//go:embed web
var FS embed.FS
