// Package render converts generated markdown into HTML for preview
// responses.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// HTML renders a markdown document to HTML. Mermaid fences pass through as
// code blocks for the client-side renderer to pick up.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render: convert markdown: %w", err)
	}
	return buf.String(), nil
}
