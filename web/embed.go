// Package web embeds the dashboard template and its static assets into
// the server binary.
package web

import "embed"

//go:embed templates
var TemplatesFS embed.FS

//go:embed static
var StaticFS embed.FS
