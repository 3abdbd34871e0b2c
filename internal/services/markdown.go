package services

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Raw HTML in replies is dropped by goldmark's default renderer.
var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify))

// RenderMarkdown converts an assistant reply to HTML for the chat bubble.
func RenderMarkdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
