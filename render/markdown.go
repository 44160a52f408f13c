// Package render turns transcript content into terminal output. Assistant
// messages are Markdown and go through glamour's constrained dialect (GFM
// tables included, raw HTML sanitized away); user messages are always emitted
// literally so nothing a user types is ever interpreted as markup.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/yoanbernabeu/docchat/session"
)

// Renderer formats messages at a fixed wrap width. Rebuild it when the width
// changes; glamour renderers are cheap to construct.
type Renderer struct {
	term  *glamour.TermRenderer
	plain bool
}

// New returns an ANSI renderer wrapping at width columns. When plain is true
// (no TTY), Markdown passes through untouched instead of being styled.
func New(width int, plain bool) (*Renderer, error) {
	if plain {
		return &Renderer{plain: true}, nil
	}
	if width < 20 {
		width = 20
	}
	term, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	return &Renderer{term: term}, nil
}

// User returns the text exactly as the user wrote it.
func (r *Renderer) User(text string) string {
	return text
}

// Assistant renders assistant-authored Markdown. On a render failure the raw
// text is returned literally; a readable transcript beats a dropped answer.
func (r *Renderer) Assistant(markdown string) string {
	if r.plain || r.term == nil {
		return markdown
	}
	out, err := r.term.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(out, "\n")
}

// Citation formats one source attribution, e.g. "handbook.pdf (p.3)".
func Citation(src session.Source) string {
	return fmt.Sprintf("%s (p.%d)", src.Document, src.Page)
}

// Citations joins all attributions of a message on one line. Duplicates are
// kept: the backend's order and multiplicity are authoritative.
func Citations(sources []session.Source) string {
	if len(sources) == 0 {
		return ""
	}
	parts := make([]string, 0, len(sources))
	for _, src := range sources {
		parts = append(parts, Citation(src))
	}
	return strings.Join(parts, "  ")
}
