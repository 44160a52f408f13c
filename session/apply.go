package session

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Event is an external fact applied to the session: a user action, a settled
// network call or a timer firing.
type Event interface{ isEvent() }

// Effect is work the host must perform after a transition: a network request
// or a scheduled timer. Requests carry a per-kind sequence number and timers a
// generation; the matching settled/fired event echoes it back so Apply can
// discard anything that has been superseded.
type Effect interface{ isEffect() }

// Events.
type (
	// RefreshRequested asks for a registry reconciliation.
	RefreshRequested struct{}

	// DocumentsLoaded settles a FetchDocuments effect. A failed background
	// refresh leaves the stale-but-available local copy untouched.
	DocumentsLoaded struct {
		Seq  int
		PDFs []string
		Err  error
	}

	// UploadRequested starts a sequential upload of the given files.
	UploadRequested struct{ Paths []string }

	// UploadSettled settles PerformUpload: every file was attempted and the
	// registry was re-fetched afterwards.
	UploadSettled struct {
		Seq       int
		Attempted int
		PDFs      []string
		ListErr   error
		Failures  []UploadFailure
	}

	// IngestRequested starts a manual ingestion run.
	IngestRequested struct{}

	// IngestSettled settles PerformIngest. Err is a transport failure;
	// Outcome carries the application-level verdict.
	IngestSettled struct {
		Seq     int
		Trigger Trigger
		Outcome IngestOutcome
		Err     error
	}

	// DeleteRequested removes one document server-side.
	DeleteRequested struct{ Filename string }

	// DeleteSettled settles PerformDelete; the registry was re-fetched
	// regardless of the outcome. RebuildOK is the server's report on the
	// ingestion rebuild that accompanies a delete.
	DeleteSettled struct {
		Seq       int
		Filename  string
		PDFs      []string
		ListErr   error
		RebuildOK bool
		Err       error
	}

	// SendRequested submits a chat message. Blank input, an in-flight chat
	// or a not-ready session drop it silently.
	SendRequested struct{ Text string }

	// ChatSettled settles PerformChat with the assistant's answer.
	ChatSettled struct {
		Seq     int
		Answer  string
		Sources []Source
		Err     error
	}

	// Notify replaces the current banner.
	Notify struct {
		Text     string
		Severity Severity
	}

	// NotifyExpired is the banner timer firing.
	NotifyExpired struct{ Gen int }

	// ReadyRevealDue is the cosmetic readiness delay elapsing.
	ReadyRevealDue struct{ Gen int }
)

func (RefreshRequested) isEvent() {}
func (DocumentsLoaded) isEvent()  {}
func (UploadRequested) isEvent()  {}
func (UploadSettled) isEvent()    {}
func (IngestRequested) isEvent()  {}
func (IngestSettled) isEvent()    {}
func (DeleteRequested) isEvent()  {}
func (DeleteSettled) isEvent()    {}
func (SendRequested) isEvent()    {}
func (ChatSettled) isEvent()      {}
func (Notify) isEvent()           {}
func (NotifyExpired) isEvent()    {}
func (ReadyRevealDue) isEvent()   {}

// Effects.
type (
	FetchDocuments struct{ Seq int }

	// PerformUpload sends each file in order, never aborting the batch on a
	// single failure, then re-fetches the registry.
	PerformUpload struct {
		Seq   int
		Paths []string
	}

	PerformIngest struct {
		Seq     int
		Trigger Trigger
	}

	// PerformDelete deletes one document and re-fetches the registry.
	PerformDelete struct {
		Seq      int
		Filename string
	}

	PerformChat struct {
		Seq  int
		Text string
	}

	// ScheduleNotifyExpiry fires NotifyExpired{Gen} after NotifyTTL.
	ScheduleNotifyExpiry struct{ Gen int }

	// ScheduleReadyReveal fires ReadyRevealDue{Gen} after ReadyRevealDelay.
	ScheduleReadyReveal struct{ Gen int }
)

func (FetchDocuments) isEffect()       {}
func (PerformUpload) isEffect()        {}
func (PerformIngest) isEffect()        {}
func (PerformDelete) isEffect()        {}
func (PerformChat) isEffect()          {}
func (ScheduleNotifyExpiry) isEffect() {}
func (ScheduleReadyReveal) isEffect()  {}

// Apply performs one atomic transition. The returned State fully replaces the
// previous one; effects are run by the host after the swap.
func Apply(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case RefreshRequested:
		s.listSeq++
		return s, []Effect{FetchDocuments{Seq: s.listSeq}}

	case DocumentsLoaded:
		if ev.Seq != s.listSeq || ev.Err != nil {
			return s, nil
		}
		s.Documents = ev.PDFs
		return s, nil

	case UploadRequested:
		if s.Uploading || len(ev.Paths) == 0 {
			return s, nil
		}
		s.Uploading = true
		s.uploadSeq++
		return s, []Effect{PerformUpload{Seq: s.uploadSeq, Paths: ev.Paths}}

	case UploadSettled:
		if ev.Seq != s.uploadSeq {
			return s, nil
		}
		s.Uploading = false
		if ev.ListErr == nil {
			s.Documents = ev.PDFs
		}
		var effects []Effect
		for _, failure := range ev.Failures {
			var eff []Effect
			s, eff = s.notify(fmt.Sprintf("Failed to upload %s", filepath.Base(failure.Path)), SeverityError)
			effects = append(effects, eff...)
		}
		var eff []Effect
		s, eff = s.notify(fmt.Sprintf("Uploaded %d file(s)", ev.Attempted), SeverityInfo)
		effects = append(effects, eff...)

		// Upload always implies a re-ingestion attempt, even when some
		// files failed to land.
		s, eff = s.startIngest(TriggerUpload)
		effects = append(effects, eff...)
		return s, effects

	case IngestRequested:
		return s.startIngest(TriggerManual)

	case IngestSettled:
		if ev.Seq != s.ingestSeq {
			return s, nil
		}
		s.Ingesting = false
		switch {
		case ev.Err != nil:
			text := "Ingestion failed"
			if ev.Trigger == TriggerUpload {
				text = "Auto-processing failed"
			}
			return s.notify(text, SeverityError)

		case !ev.Outcome.Success:
			text := ev.Outcome.Message
			if text == "" {
				text = "Ingestion failed"
			}
			if ev.Trigger == TriggerUpload {
				// A failed upload-triggered run revokes readiness; a
				// manual one leaves the prior value alone.
				s.Ready = false
				s.readyGen++
			}
			return s.notify(text, SeverityError)

		default:
			var effects []Effect
			s, effects = s.notify(ev.Outcome.Summary(), SeverityInfo)
			s.readyGen++
			effects = append(effects, ScheduleReadyReveal{Gen: s.readyGen})
			return s, effects
		}

	case DeleteRequested:
		if s.Ingesting || ev.Filename == "" {
			return s, nil
		}
		s.Ingesting = true
		s.deleteSeq++
		return s, []Effect{PerformDelete{Seq: s.deleteSeq, Filename: ev.Filename}}

	case DeleteSettled:
		if ev.Seq != s.deleteSeq {
			return s, nil
		}
		s.Ingesting = false
		if ev.ListErr == nil {
			s.Documents = ev.PDFs
		}
		if ev.Err != nil {
			s.Ready = false
			s.readyGen++
			return s.notify("Failed to delete file", SeverityError)
		}
		if !ev.RebuildOK {
			s.Ready = false
			s.readyGen++
			return s.notify(fmt.Sprintf("Deleted %s", ev.Filename), SeverityError)
		}
		var effects []Effect
		s, effects = s.notify(fmt.Sprintf("Deleted %s and rebuilt vectorstore", ev.Filename), SeverityInfo)
		s.readyGen++
		effects = append(effects, ScheduleReadyReveal{Gen: s.readyGen})
		return s, effects

	case SendRequested:
		if strings.TrimSpace(ev.Text) == "" || !s.CanSend() {
			return s, nil
		}
		s.Transcript = appendMessage(s.Transcript, Message{Role: RoleUser, Content: ev.Text})
		s.Chatting = true
		s.chatSeq++
		return s, []Effect{PerformChat{Seq: s.chatSeq, Text: ev.Text}}

	case ChatSettled:
		if ev.Seq != s.chatSeq {
			return s, nil
		}
		s.Chatting = false
		if ev.Err != nil {
			s.Transcript = appendMessage(s.Transcript, Message{Role: RoleAssistant, Content: ChatApology, Sources: []Source{}})
			return s, nil
		}
		s.Transcript = appendMessage(s.Transcript, Message{Role: RoleAssistant, Content: ev.Answer, Sources: ev.Sources})
		return s, nil

	case Notify:
		return s.notify(ev.Text, ev.Severity)

	case NotifyExpired:
		if s.Notification != nil && s.Notification.Gen == ev.Gen {
			s.Notification = nil
		}
		return s, nil

	case ReadyRevealDue:
		if ev.Gen == s.readyGen {
			s.Ready = true
		}
		return s, nil
	}
	return s, nil
}

// notify replaces the banner and schedules its own expiry. The generation
// bump makes every older expiry timer a no-op, so a fast-trailing
// notification cannot be erased early.
func (s State) notify(text string, severity Severity) (State, []Effect) {
	s.notifyGen++
	s.Notification = &Notification{Text: text, Severity: severity, Gen: s.notifyGen}
	return s, []Effect{ScheduleNotifyExpiry{Gen: s.notifyGen}}
}

// startIngest validates locally before any network call: ingesting an empty
// registry is refused with a banner.
func (s State) startIngest(trigger Trigger) (State, []Effect) {
	if s.Ingesting {
		return s, nil
	}
	if len(s.Documents) == 0 {
		return s.notify("Upload some PDFs first", SeverityError)
	}
	s.Ingesting = true
	s.ingestSeq++
	return s, []Effect{PerformIngest{Seq: s.ingestSeq, Trigger: trigger}}
}

// Summary is the human-readable confirmation for a successful run.
func (o IngestOutcome) Summary() string {
	text := fmt.Sprintf("Processed %d chunks from %d PDFs", o.Chunks, len(o.Loaded))
	if len(o.Failed) > 0 {
		text += fmt.Sprintf(" (%d failed to load)", len(o.Failed))
	}
	return text
}

// appendMessage copies before appending so an older State snapshot never sees
// a message appended after it was taken.
func appendMessage(transcript []Message, msg Message) []Message {
	next := make([]Message, len(transcript), len(transcript)+1)
	copy(next, transcript)
	return append(next, msg)
}
