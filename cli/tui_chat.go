package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yoanbernabeu/docchat/api"
	"github.com/yoanbernabeu/docchat/session"
)

// Messages: one per settled backend call or fired timer. Each echoes the
// sequence/generation it was issued with so the reducer can drop stale ones.
type refreshMsg struct{}

type docsLoadedMsg struct {
	seq  int
	pdfs []string
	err  error
}

type uploadSettledMsg struct {
	seq       int
	attempted int
	pdfs      []string
	listErr   error
	failures  []session.UploadFailure
}

type ingestSettledMsg struct {
	seq     int
	trigger session.Trigger
	outcome session.IngestOutcome
	err     error
}

type deleteSettledMsg struct {
	seq       int
	filename  string
	pdfs      []string
	listErr   error
	rebuildOK bool
	err       error
}

type chatSettledMsg struct {
	seq     int
	answer  string
	sources []session.Source
	err     error
}

type notifyExpiredMsg struct{ gen int }
type readyRevealMsg struct{ gen int }

type focusArea int

const (
	focusInput focusArea = iota
	focusDocs
)

var sessionPhases = []string{"Idle", "Uploading", "Ingesting", "Ready"}

// chatUIModel hosts the session state machine: keys and settled calls become
// session events, session effects become tea commands.
type chatUIModel struct {
	theme tuiTheme

	width  int
	height int

	client *api.Client
	sess   session.State

	transcript  transcriptModel
	input       textarea.Model
	uploadInput textinput.Model
	spin        spinner.Model

	focus     focusArea
	docCursor int
	prompting bool
	showHelp  bool
}

func newChatUIModel(client *api.Client) chatUIModel {
	theme := newTUITheme()

	input := textarea.New()
	input.Placeholder = "Process documents first to start chatting"
	input.ShowLineNumbers = false
	input.CharLimit = 2000
	input.SetHeight(2)
	input.Focus()

	uploadInput := textinput.New()
	uploadInput.Placeholder = "path or glob, e.g. ~/docs/*.pdf"
	uploadInput.CharLimit = 500

	spin := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.info),
	)

	return chatUIModel{
		theme:       theme,
		client:      client,
		sess:        session.New(),
		transcript:  newTranscriptModel(theme),
		input:       input,
		uploadInput: uploadInput,
		spin:        spin,
	}
}

func (m chatUIModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		func() tea.Msg { return refreshMsg{} },
	)
}

func (m chatUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalculateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case refreshMsg:
		return m, m.applyEvent(session.RefreshRequested{})

	case docsLoadedMsg:
		if msg.err != nil {
			// Background reconciliation: logged, never a banner.
			log.Printf("refresh documents: %v", msg.err)
		}
		return m, m.applyEvent(session.DocumentsLoaded{Seq: msg.seq, PDFs: msg.pdfs, Err: msg.err})

	case uploadSettledMsg:
		return m, m.applyEvent(session.UploadSettled{
			Seq:       msg.seq,
			Attempted: msg.attempted,
			PDFs:      msg.pdfs,
			ListErr:   msg.listErr,
			Failures:  msg.failures,
		})

	case ingestSettledMsg:
		return m, m.applyEvent(session.IngestSettled{
			Seq:     msg.seq,
			Trigger: msg.trigger,
			Outcome: msg.outcome,
			Err:     msg.err,
		})

	case deleteSettledMsg:
		return m, m.applyEvent(session.DeleteSettled{
			Seq:       msg.seq,
			Filename:  msg.filename,
			PDFs:      msg.pdfs,
			ListErr:   msg.listErr,
			RebuildOK: msg.rebuildOK,
			Err:       msg.err,
		})

	case chatSettledMsg:
		return m, m.applyEvent(session.ChatSettled{
			Seq:     msg.seq,
			Answer:  msg.answer,
			Sources: msg.sources,
			Err:     msg.err,
		})

	case notifyExpiredMsg:
		return m, m.applyEvent(session.NotifyExpired{Gen: msg.gen})

	case readyRevealMsg:
		return m, m.applyEvent(session.ReadyRevealDue{Gen: msg.gen})

	case spinner.TickMsg:
		if m.sess.Chatting {
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.uploadInput, cmd = m.uploadInput.Update(msg)
	cmds = append(cmds, cmd)
	m.transcript, cmd = m.transcript.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m chatUIModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.prompting {
		switch key {
		case "esc":
			m.prompting = false
			m.uploadInput.Reset()
			m.uploadInput.Blur()
		case "enter":
			return m.submitUploadPrompt()
		default:
			m.uploadInput, cmd = m.uploadInput.Update(msg)
		}
		return m, cmd
	}

	switch key {
	case "esc":
		return m, tea.Quit
	case "tab":
		m.toggleFocus()
		return m, nil
	case "ctrl+u":
		m.openUploadPrompt()
		return m, textinput.Blink
	case "ctrl+p":
		return m, m.applyEvent(session.IngestRequested{})
	case "ctrl+d":
		return m, m.deleteSelected()
	case "ctrl+r":
		return m, m.applyEvent(session.RefreshRequested{})
	}

	if m.focus == focusDocs {
		switch key {
		case "up", "k":
			if m.docCursor > 0 {
				m.docCursor--
			}
		case "down", "j":
			if m.docCursor < len(m.sess.Documents)-1 {
				m.docCursor++
			}
		case "d", "delete":
			return m, m.deleteSelected()
		case "p":
			return m, m.applyEvent(session.IngestRequested{})
		case "u":
			m.openUploadPrompt()
			return m, textinput.Blink
		case "?":
			m.showHelp = !m.showHelp
		case "pgup", "pgdown", "home", "end":
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch key {
	case "enter":
		return m, m.submitSend()
	case "pgup", "pgdown":
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyEvent runs one reducer transition and turns its effects into commands.
// The state swap happens before any effect command is built, so effects only
// ever observe the post-transition state.
func (m *chatUIModel) applyEvent(ev session.Event) tea.Cmd {
	prev := m.sess
	next, effects := session.Apply(m.sess, ev)
	m.sess = next

	if len(next.Transcript) != len(prev.Transcript) {
		m.transcript.setMessages(next.Transcript)
	}
	m.syncAffordances()

	cmds := make([]tea.Cmd, 0, len(effects)+1)
	for _, eff := range effects {
		cmds = append(cmds, m.runEffect(eff))
	}
	if next.Chatting && !prev.Chatting {
		cmds = append(cmds, m.spin.Tick)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// runEffect builds the command for one effect. Requests run without deadline
// or cancellation; a hung call keeps its busy flag set, which is exactly what
// disables the affordance.
func (m *chatUIModel) runEffect(eff session.Effect) tea.Cmd {
	client := m.client
	switch eff := eff.(type) {
	case session.FetchDocuments:
		return func() tea.Msg {
			pdfs, err := client.ListPDFs(context.Background())
			return docsLoadedMsg{seq: eff.Seq, pdfs: pdfs, err: err}
		}

	case session.PerformUpload:
		return func() tea.Msg {
			ctx := context.Background()
			var failures []session.UploadFailure
			for _, path := range eff.Paths {
				if err := client.Upload(ctx, path); err != nil {
					failures = append(failures, session.UploadFailure{Path: path, Err: err})
				}
			}
			pdfs, listErr := client.ListPDFs(ctx)
			return uploadSettledMsg{
				seq:       eff.Seq,
				attempted: len(eff.Paths),
				pdfs:      pdfs,
				listErr:   listErr,
				failures:  failures,
			}
		}

	case session.PerformIngest:
		return func() tea.Msg {
			res, err := client.Ingest(context.Background())
			return ingestSettledMsg{seq: eff.Seq, trigger: eff.Trigger, outcome: outcomeOf(res), err: err}
		}

	case session.PerformDelete:
		return func() tea.Msg {
			ctx := context.Background()
			res, err := client.Delete(ctx, eff.Filename)
			pdfs, listErr := client.ListPDFs(ctx)
			return deleteSettledMsg{
				seq:       eff.Seq,
				filename:  eff.Filename,
				pdfs:      pdfs,
				listErr:   listErr,
				rebuildOK: res.Ingestion.Success,
				err:       err,
			}
		}

	case session.PerformChat:
		return func() tea.Msg {
			res, err := client.Chat(context.Background(), eff.Text)
			return chatSettledMsg{seq: eff.Seq, answer: res.Answer, sources: sourcesOf(res.Sources), err: err}
		}

	case session.ScheduleNotifyExpiry:
		return tea.Tick(session.NotifyTTL, func(time.Time) tea.Msg {
			return notifyExpiredMsg{gen: eff.Gen}
		})

	case session.ScheduleReadyReveal:
		return tea.Tick(session.ReadyRevealDelay, func(time.Time) tea.Msg {
			return readyRevealMsg{gen: eff.Gen}
		})
	}
	return nil
}

func (m *chatUIModel) submitSend() tea.Cmd {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" || !m.sess.CanSend() {
		return nil
	}
	m.input.Reset()
	return m.applyEvent(session.SendRequested{Text: text})
}

func (m *chatUIModel) submitUploadPrompt() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.uploadInput.Value())
	m.prompting = false
	m.uploadInput.Reset()
	m.uploadInput.Blur()

	if value == "" {
		return m, nil
	}
	paths := expandUploadPaths(value)
	if len(paths) == 0 {
		return m, m.applyEvent(session.Notify{Text: "No files matched " + value, Severity: session.SeverityError})
	}
	return m, m.applyEvent(session.UploadRequested{Paths: paths})
}

func (m *chatUIModel) deleteSelected() tea.Cmd {
	if len(m.sess.Documents) == 0 {
		return nil
	}
	if m.docCursor >= len(m.sess.Documents) {
		m.docCursor = len(m.sess.Documents) - 1
	}
	return m.applyEvent(session.DeleteRequested{Filename: m.sess.Documents[m.docCursor]})
}

func (m *chatUIModel) openUploadPrompt() {
	m.prompting = true
	m.uploadInput.Focus()
}

func (m *chatUIModel) toggleFocus() {
	if m.focus == focusInput {
		m.focus = focusDocs
		m.input.Blur()
		return
	}
	m.focus = focusInput
	m.input.Focus()
}

func (m *chatUIModel) syncAffordances() {
	if m.sess.Ready {
		m.input.Placeholder = "Ask about your documents..."
	} else {
		m.input.Placeholder = "Process documents first to start chatting"
	}
	if m.docCursor >= len(m.sess.Documents) {
		m.docCursor = 0
	}
}

func (m *chatUIModel) recalculateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	leftW, _ := splitColumns(m.width - 2)

	// Header 5, rail 3, banner 1, input 4, footer 3.
	transcriptH := m.height - 16
	if transcriptH < 5 {
		transcriptH = 5
	}

	m.transcript.setSize(leftW-2, transcriptH-3)
	m.input.SetWidth(leftW - 2)
}

func (m chatUIModel) railStep() int {
	switch {
	case m.sess.Uploading:
		return 1
	case m.sess.Ingesting:
		return 2
	case m.sess.Ready:
		return 3
	default:
		return 0
	}
}

func (m chatUIModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading docchat..."
	}

	sections := []string{
		m.renderHeader(),
		m.theme.panel.Width(m.width - 2).Render(renderLifecycleRail(m.theme, sessionPhases, m.railStep())),
		m.renderBanner(),
		m.renderMainPanels(),
	}

	if m.prompting {
		sections = append(sections, renderActionCard(
			m.theme,
			"Upload PDFs",
			"enter uploads, esc cancels",
			m.uploadInput.View(),
			m.width-2,
		))
	}
	if m.showHelp {
		sections = append(sections, renderActionCard(
			m.theme,
			"Controls",
			"keys while the documents panel has focus",
			m.theme.text.Render("up/down select | d delete | p process | u upload | ctrl+r refresh | ? close help"),
			m.width-2,
		))
	}
	sections = append(sections, m.renderFooter())

	return m.theme.canvas.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m chatUIModel) renderHeader() string {
	title := m.theme.title.Render("docchat")
	meta := m.theme.muted.Render(fmt.Sprintf(
		"backend=%s  session=%s",
		m.client.BaseURL(),
		truncateRunes(m.client.SessionID(), 8),
	))

	status := m.theme.muted.Render("not ready")
	switch {
	case m.sess.Chatting:
		status = m.spin.View() + m.theme.info.Render(" thinking...")
	case m.sess.Ready:
		status = m.theme.ok.Render("● Ready to chat")
	case m.sess.Ingesting:
		status = m.theme.warn.Render("processing...")
	case m.sess.Uploading:
		status = m.theme.warn.Render("uploading...")
	}

	return m.theme.panel.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, title, meta, status))
}

func (m chatUIModel) renderBanner() string {
	if m.sess.Notification == nil {
		return ""
	}
	style := m.theme.bannerInfo
	if m.sess.Notification.Severity == session.SeverityError {
		style = m.theme.bannerError
	}
	return style.Render(" " + truncateRunes(m.sess.Notification.Text, m.width-4))
}

func (m chatUIModel) renderMainPanels() string {
	leftW, rightW := splitColumns(m.width - 2)

	transcriptH := m.height - 16
	if transcriptH < 5 {
		transcriptH = 5
	}

	conversation := m.theme.panel.Width(leftW).Height(transcriptH).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.theme.subtitle.Render("Conversation"),
			m.transcript.View(),
		),
	)
	inputPanel := m.theme.panel.Width(leftW).Render(m.input.View())
	leftCol := lipgloss.JoinVertical(lipgloss.Left, conversation, inputPanel)

	if rightW <= 0 {
		return leftCol
	}
	rightCol := m.renderDocumentsPanel(rightW, transcriptH+4)
	return lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)
}

func (m chatUIModel) renderDocumentsPanel(width, height int) string {
	label := "Documents"
	if m.focus == focusDocs {
		label += " *"
	}
	lines := []string{m.theme.subtitle.Render(label)}

	if len(m.sess.Documents) == 0 {
		lines = append(lines, m.theme.muted.Render("No documents yet"))
	} else {
		maxRows := height - 4
		if maxRows < 1 {
			maxRows = 1
		}
		start := 0
		if m.docCursor >= maxRows {
			start = m.docCursor - maxRows + 1
		}
		end := start + maxRows
		if end > len(m.sess.Documents) {
			end = len(m.sess.Documents)
		}
		for i := start; i < end; i++ {
			marker := "  "
			name := truncateRunes(m.sess.Documents[i], width-6)
			if m.focus == focusDocs && i == m.docCursor {
				marker = "> "
				name = m.theme.highlight.Render(name)
			} else {
				name = m.theme.text.Render(name)
			}
			lines = append(lines, marker+name)
		}
	}

	lines = append(lines, "", m.theme.muted.Render(fmt.Sprintf("%d document(s)", len(m.sess.Documents))))
	return m.theme.panel.Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m chatUIModel) renderFooter() string {
	parts := []string{
		m.theme.help.Render("enter send"),
		m.theme.help.Render("tab documents"),
		m.theme.help.Render("ctrl+u upload"),
		m.theme.help.Render("ctrl+p process"),
		m.theme.help.Render("esc quit"),
	}
	if m.focus == focusDocs {
		parts = append(parts, m.theme.help.Render("? help"))
	}
	switch m.sess.Phase() {
	case session.PhaseUploading:
		parts = append(parts, m.theme.warn.Render("uploading"))
	case session.PhaseIngesting:
		parts = append(parts, m.theme.warn.Render("ingesting"))
	case session.PhaseChatting:
		parts = append(parts, m.theme.info.Render("waiting for answer"))
	}
	return m.theme.panel.Width(m.width - 2).Render(strings.Join(parts, "  |  "))
}

// expandUploadPaths turns the prompt value into concrete files: each
// whitespace-separated token may be a literal path or a glob.
func expandUploadPaths(value string) []string {
	var paths []string
	for _, token := range strings.Fields(value) {
		matches, err := filepath.Glob(token)
		if err != nil || len(matches) == 0 {
			continue
		}
		paths = append(paths, matches...)
	}
	return paths
}

func runChatUI() error {
	if !isInteractiveTerminal() {
		return errors.New("docchat needs an interactive terminal; use `docchat ask` for scripted queries")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newClient(cfg)

	// Keep stray log output off the alternate screen; background refresh
	// failures are deliberately silent in the UI.
	oldWriter := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(oldWriter)

	p := tea.NewProgram(newChatUIModel(client), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
