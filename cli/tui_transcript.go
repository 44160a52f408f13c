package cli

import (
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yoanbernabeu/docchat/render"
	"github.com/yoanbernabeu/docchat/session"
)

// transcriptModel is the scrolling conversation panel. It autoscrolls while
// pinned to the bottom and stops following once the user scrolls up.
type transcriptModel struct {
	viewport   viewport.Model
	messages   []session.Message
	renderer   *render.Renderer
	theme      tuiTheme
	width      int
	height     int
	autoScroll bool
}

func newTranscriptModel(theme tuiTheme) transcriptModel {
	vp := viewport.New(0, 0)
	vp.YPosition = 0

	return transcriptModel{
		viewport:   vp,
		theme:      theme,
		autoScroll: true,
	}
}

func (m transcriptModel) Update(msg tea.Msg) (transcriptModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			m.autoScroll = false
		case "pgdown", "end":
			if m.viewport.AtBottom() {
				m.autoScroll = true
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)

	if m.viewport.AtBottom() {
		m.autoScroll = true
	}

	return m, cmd
}

func (m *transcriptModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h

	renderer, err := render.New(w, false)
	if err != nil {
		log.Printf("markdown renderer: %v", err)
	} else {
		m.renderer = renderer
	}
	m.updateContent()
}

func (m *transcriptModel) setMessages(messages []session.Message) {
	m.messages = messages
	m.updateContent()
}

func (m *transcriptModel) updateContent() {
	m.viewport.SetContent(m.renderContent())
	if m.autoScroll {
		m.viewport.GotoBottom()
	}
}

func (m transcriptModel) renderContent() string {
	if len(m.messages) == 0 {
		return m.theme.muted.Render("Upload your PDFs, process them, then ask questions about the content.")
	}

	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		switch msg.Role {
		case session.RoleUser:
			b.WriteString(m.theme.userLabel.Render("You"))
			b.WriteString("\n")
			// User text stays literal, whatever syntax it contains.
			b.WriteString(m.theme.text.Render(m.userBody(msg.Content)))
		default:
			b.WriteString(m.theme.assistantLabel.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(m.assistantBody(msg.Content))
			if len(msg.Sources) > 0 {
				b.WriteString("\n")
				b.WriteString(m.theme.citation.Render("Sources: " + render.Citations(msg.Sources)))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m transcriptModel) userBody(content string) string {
	if m.renderer == nil {
		return content
	}
	return m.renderer.User(content)
}

func (m transcriptModel) assistantBody(content string) string {
	if m.renderer == nil {
		return content
	}
	return m.renderer.Assistant(content)
}

func (m transcriptModel) View() string {
	return m.viewport.View()
}
