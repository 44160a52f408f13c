// Package session holds the client-side conversation state machine: the
// document registry mirror, the chat transcript, the transient notification
// banner and the busy/ready flags that gate every user action. State is only
// changed through Apply, which consumes one Event and returns the next State
// plus the side effects the host must run. The host (TUI or CLI) owns all
// I/O; this package stays pure so transitions can be tested directly.
package session

import "time"

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Severity selects the notification banner variant.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Trigger records what caused an ingestion run. A failed upload-triggered run
// revokes readiness; a failed manual run leaves it untouched.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerUpload Trigger = "upload"
)

const (
	// NotifyTTL is how long a notification stays on screen.
	NotifyTTL = 4 * time.Second

	// ReadyRevealDelay postpones the ready indicator so the ingestion
	// summary can be read first. Cosmetic only.
	ReadyRevealDelay = 6 * time.Second

	// ChatApology is appended as a regular assistant message when a chat
	// request fails; a failed answer is still part of the conversation.
	ChatApology = "Sorry, I encountered an error. Please try again."
)

// Source cites where an assistant answer was grounded.
type Source struct {
	Document string
	Page     int
}

// Message is one transcript entry. The transcript is append-only and keeps
// insertion order; messages are never edited once appended.
type Message struct {
	Role    Role
	Content string
	Sources []Source
}

// Notification is the single transient banner. Gen ties it to the expiry
// timer that was scheduled for it; a stale timer tick clears nothing.
type Notification struct {
	Text     string
	Severity Severity
	Gen      int
}

// State is the whole session. Values are copied through Apply so the host
// always swaps in a complete replacement, never observes a partial update.
type State struct {
	Documents  []string
	Transcript []Message

	Uploading bool
	Ingesting bool
	Chatting  bool

	// Ready is sticky: it only becomes true through a confirmed successful
	// ingestion-affecting operation and survives unrelated activity.
	Ready bool

	Notification *Notification

	notifyGen int
	readyGen  int

	listSeq   int
	uploadSeq int
	ingestSeq int
	deleteSeq int
	chatSeq   int
}

// New returns the initial session: nothing fetched, nothing ready.
func New() State {
	return State{}
}

// Phase is the composite busy state, for display. At most one busy flag is
// meaningfully active at a time; Chatting wins over the registry flags.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUploading
	PhaseIngesting
	PhaseChatting
)

func (s State) Phase() Phase {
	switch {
	case s.Chatting:
		return PhaseChatting
	case s.Ingesting:
		return PhaseIngesting
	case s.Uploading:
		return PhaseUploading
	default:
		return PhaseIdle
	}
}

// CanSend reports whether a chat message may be sent right now. The input
// affordance and Apply both consult this; Apply re-checks so a stale
// affordance can never smuggle a send through.
func (s State) CanSend() bool {
	return s.Ready && !s.Chatting
}

// UploadFailure records one file that could not be uploaded. The remaining
// files in the same batch are still attempted.
type UploadFailure struct {
	Path string
	Err  error
}

// IngestOutcome is the application-level result of an ingestion run.
type IngestOutcome struct {
	Success bool
	Message string
	Chunks  int
	Loaded  []string
	Failed  []string
}
