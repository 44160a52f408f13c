package session

import (
	"errors"
	"testing"
)

func findEffect[T Effect](effects []Effect) (T, bool) {
	for _, eff := range effects {
		if match, ok := eff.(T); ok {
			return match, true
		}
	}
	var zero T
	return zero, false
}

func readyState(t *testing.T) State {
	t.Helper()
	s := New()
	s, _ = Apply(s, DocumentsLoaded{Seq: 0, PDFs: []string{"a.pdf", "b.pdf"}})
	s, effects := Apply(s, IngestRequested{})
	ingest, ok := findEffect[PerformIngest](effects)
	if !ok {
		t.Fatal("expected a PerformIngest effect")
	}
	s, effects = Apply(s, IngestSettled{
		Seq:     ingest.Seq,
		Trigger: ingest.Trigger,
		Outcome: IngestOutcome{Success: true, Chunks: 12, Loaded: []string{"a.pdf", "b.pdf"}},
	})
	reveal, ok := findEffect[ScheduleReadyReveal](effects)
	if !ok {
		t.Fatal("expected a ScheduleReadyReveal effect")
	}
	s, _ = Apply(s, ReadyRevealDue{Gen: reveal.Gen})
	if !s.Ready {
		t.Fatal("fixture session should be ready")
	}
	return s
}

func TestSendBlankIsDropped(t *testing.T) {
	s := readyState(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		next, effects := Apply(s, SendRequested{Text: text})
		if len(next.Transcript) != 0 {
			t.Fatalf("send(%q) mutated the transcript: %d messages", text, len(next.Transcript))
		}
		if len(effects) != 0 {
			t.Fatalf("send(%q) produced %d effects, want 0", text, len(effects))
		}
	}
}

func TestSendNotReadyIsDropped(t *testing.T) {
	s := New()
	s, _ = Apply(s, DocumentsLoaded{PDFs: []string{"a.pdf"}})

	next, effects := Apply(s, SendRequested{Text: "hello"})
	if len(next.Transcript) != 0 || len(effects) != 0 {
		t.Fatalf("send before ready: transcript=%d effects=%d, want 0/0", len(next.Transcript), len(effects))
	}
}

func TestSendWhileChattingIsDroppedNotQueued(t *testing.T) {
	s := readyState(t)

	s, effects := Apply(s, SendRequested{Text: "first"})
	chat, ok := findEffect[PerformChat](effects)
	if !ok {
		t.Fatal("expected a PerformChat effect")
	}
	if !s.Chatting {
		t.Fatal("chatting flag not set")
	}

	next, effects := Apply(s, SendRequested{Text: "second"})
	if len(effects) != 0 {
		t.Fatalf("second send while chatting produced %d effects, want 0", len(effects))
	}
	if len(next.Transcript) != 1 {
		t.Fatalf("transcript = %d messages, want only the first user message", len(next.Transcript))
	}

	next, _ = Apply(next, ChatSettled{Seq: chat.Seq, Answer: "answer", Sources: []Source{}})
	if len(next.Transcript) != 2 {
		t.Fatalf("transcript = %d messages after settle, want 2", len(next.Transcript))
	}
	if next.Chatting {
		t.Fatal("chatting flag still set after settle")
	}
}

func TestSendAppendsOptimisticallyInOrder(t *testing.T) {
	s := readyState(t)

	s, effects := Apply(s, SendRequested{Text: "What is the refund policy?"})
	if len(s.Transcript) != 1 || s.Transcript[0].Role != RoleUser {
		t.Fatalf("expected one user message before the reply, got %+v", s.Transcript)
	}
	chat, _ := findEffect[PerformChat](effects)

	s, _ = Apply(s, ChatSettled{
		Seq:     chat.Seq,
		Answer:  "See section 4.",
		Sources: []Source{{Document: "a.pdf", Page: 3}},
	})
	if len(s.Transcript) != 2 {
		t.Fatalf("transcript = %d messages, want 2", len(s.Transcript))
	}
	reply := s.Transcript[1]
	if reply.Role != RoleAssistant || reply.Content != "See section 4." {
		t.Fatalf("unexpected assistant message: %+v", reply)
	}
	if len(reply.Sources) != 1 || reply.Sources[0].Document != "a.pdf" || reply.Sources[0].Page != 3 {
		t.Fatalf("unexpected sources: %+v", reply.Sources)
	}
}

func TestChatFailureAppendsApology(t *testing.T) {
	s := readyState(t)
	s, effects := Apply(s, SendRequested{Text: "hello"})
	chat, _ := findEffect[PerformChat](effects)

	s, _ = Apply(s, ChatSettled{Seq: chat.Seq, Err: errors.New("connection refused")})
	if len(s.Transcript) != 2 {
		t.Fatalf("transcript = %d messages, want 2", len(s.Transcript))
	}
	if s.Transcript[1].Content != ChatApology {
		t.Fatalf("assistant content = %q, want the apology", s.Transcript[1].Content)
	}
	if len(s.Transcript[1].Sources) != 0 {
		t.Fatalf("apology carries %d sources, want 0", len(s.Transcript[1].Sources))
	}
}

func TestStaleChatSettledIsDiscarded(t *testing.T) {
	s := readyState(t)
	s, effects := Apply(s, SendRequested{Text: "hello"})
	chat, _ := findEffect[PerformChat](effects)

	next, _ := Apply(s, ChatSettled{Seq: chat.Seq - 1, Answer: "stale"})
	if len(next.Transcript) != 1 {
		t.Fatalf("stale settle appended a message: %d", len(next.Transcript))
	}
	if !next.Chatting {
		t.Fatal("stale settle cleared the chatting flag")
	}
}

func TestUploadAlwaysReconcilesAndTriggersIngest(t *testing.T) {
	s := New()
	s, effects := Apply(s, UploadRequested{Paths: []string{"/tmp/a.pdf", "/tmp/b.pdf"}})
	if !s.Uploading {
		t.Fatal("uploading flag not set")
	}
	upload, ok := findEffect[PerformUpload](effects)
	if !ok {
		t.Fatal("expected a PerformUpload effect")
	}

	s, effects = Apply(s, UploadSettled{
		Seq:       upload.Seq,
		Attempted: 2,
		PDFs:      []string{"a.pdf"},
		Failures:  []UploadFailure{{Path: "/tmp/b.pdf", Err: errors.New("boom")}},
	})
	if s.Uploading {
		t.Fatal("uploading flag still set")
	}
	if len(s.Documents) != 1 || s.Documents[0] != "a.pdf" {
		t.Fatalf("documents = %v, want the reconciled server list", s.Documents)
	}
	if _, ok := findEffect[PerformIngest](effects); !ok {
		t.Fatal("upload settle must trigger ingestion even with per-file failures")
	}
}

func TestUploadSettledNotifiesAttemptedCount(t *testing.T) {
	s := New()
	s, effects := Apply(s, UploadRequested{Paths: []string{"/tmp/a.pdf", "/tmp/b.pdf", "/tmp/c.pdf"}})
	upload, _ := findEffect[PerformUpload](effects)

	s, _ = Apply(s, UploadSettled{Seq: upload.Seq, Attempted: 3, PDFs: []string{"a.pdf", "b.pdf", "c.pdf"}})
	if s.Notification == nil {
		t.Fatal("no notification after upload settle")
	}
	if s.Notification.Text != "Uploaded 3 file(s)" {
		t.Fatalf("notification = %q", s.Notification.Text)
	}
}

func TestIngestWithoutDocumentsRefusesLocally(t *testing.T) {
	s := New()
	s, effects := Apply(s, IngestRequested{})
	if _, ok := findEffect[PerformIngest](effects); ok {
		t.Fatal("ingest with no documents must not reach the network")
	}
	if s.Notification == nil || s.Notification.Severity != SeverityError {
		t.Fatalf("expected an error notification, got %+v", s.Notification)
	}
	if s.Notification.Text != "Upload some PDFs first" {
		t.Fatalf("notification = %q", s.Notification.Text)
	}
}

func TestManualIngestFailureLeavesReadyUntouched(t *testing.T) {
	s := readyState(t)
	s, effects := Apply(s, IngestRequested{})
	ingest, _ := findEffect[PerformIngest](effects)

	s, _ = Apply(s, IngestSettled{
		Seq:     ingest.Seq,
		Trigger: TriggerManual,
		Outcome: IngestOutcome{Success: false, Message: "no chunks produced"},
	})
	if !s.Ready {
		t.Fatal("manual ingest failure must not revoke readiness")
	}
	if s.Notification == nil || s.Notification.Text != "no chunks produced" {
		t.Fatalf("expected the server message as banner, got %+v", s.Notification)
	}
}

func TestUploadTriggeredIngestFailureRevokesReady(t *testing.T) {
	s := readyState(t)
	s, effects := Apply(s, UploadRequested{Paths: []string{"/tmp/c.pdf"}})
	upload, _ := findEffect[PerformUpload](effects)
	s, effects = Apply(s, UploadSettled{Seq: upload.Seq, Attempted: 1, PDFs: []string{"a.pdf", "b.pdf", "c.pdf"}})
	ingest, _ := findEffect[PerformIngest](effects)
	if ingest.Trigger != TriggerUpload {
		t.Fatalf("trigger = %s, want upload", ingest.Trigger)
	}

	s, _ = Apply(s, IngestSettled{Seq: ingest.Seq, Trigger: ingest.Trigger, Outcome: IngestOutcome{Success: false}})
	if s.Ready {
		t.Fatal("upload-triggered ingest failure must revoke readiness")
	}
}

func TestIngestSuccessRevealsReadyAfterDelay(t *testing.T) {
	s := New()
	s, _ = Apply(s, DocumentsLoaded{PDFs: []string{"a.pdf", "b.pdf"}})
	s, effects := Apply(s, IngestRequested{})
	ingest, _ := findEffect[PerformIngest](effects)

	s, effects = Apply(s, IngestSettled{
		Seq:     ingest.Seq,
		Trigger: TriggerManual,
		Outcome: IngestOutcome{Success: true, Chunks: 12, Loaded: []string{"a.pdf", "b.pdf"}},
	})
	if s.Ready {
		t.Fatal("ready must stay false until the reveal timer fires")
	}
	if s.Notification == nil || s.Notification.Text != "Processed 12 chunks from 2 PDFs" {
		t.Fatalf("notification = %+v", s.Notification)
	}
	reveal, ok := findEffect[ScheduleReadyReveal](effects)
	if !ok {
		t.Fatal("expected a ScheduleReadyReveal effect")
	}

	s, _ = Apply(s, ReadyRevealDue{Gen: reveal.Gen})
	if !s.Ready {
		t.Fatal("ready not set after the reveal fired")
	}
}

func TestTransportIngestFailureLeavesReadinessAlone(t *testing.T) {
	s := readyState(t)
	s, effects := Apply(s, IngestRequested{})
	ingest, _ := findEffect[PerformIngest](effects)

	s, _ = Apply(s, IngestSettled{Seq: ingest.Seq, Trigger: TriggerManual, Err: errors.New("dial tcp: refused")})
	if !s.Ready {
		t.Fatal("transport failure must not change readiness")
	}
	if s.Ingesting {
		t.Fatal("ingesting flag still set after transport failure")
	}
}

func TestDeleteRebuildFailureForcesReadyFalse(t *testing.T) {
	s := readyState(t)
	s, effects := Apply(s, DeleteRequested{Filename: "a.pdf"})
	del, ok := findEffect[PerformDelete](effects)
	if !ok {
		t.Fatal("expected a PerformDelete effect")
	}

	s, _ = Apply(s, DeleteSettled{
		Seq:      del.Seq,
		Filename: "a.pdf",
		PDFs:     []string{"b.pdf"},
	})
	if s.Ready {
		t.Fatal("delete without a confirmed rebuild must force ready false")
	}
	if s.Notification == nil || s.Notification.Severity != SeverityError {
		t.Fatalf("expected an error banner, got %+v", s.Notification)
	}
	if len(s.Documents) != 1 || s.Documents[0] != "b.pdf" {
		t.Fatalf("documents = %v, want the reconciled list", s.Documents)
	}
}

func TestDeleteRebuildSuccessSchedulesReveal(t *testing.T) {
	s := readyState(t)
	s, effects := Apply(s, DeleteRequested{Filename: "a.pdf"})
	del, _ := findEffect[PerformDelete](effects)

	s, effects = Apply(s, DeleteSettled{
		Seq:       del.Seq,
		Filename:  "a.pdf",
		PDFs:      []string{"b.pdf"},
		RebuildOK: true,
	})
	if s.Notification == nil || s.Notification.Text != "Deleted a.pdf and rebuilt vectorstore" {
		t.Fatalf("notification = %+v", s.Notification)
	}
	if _, ok := findEffect[ScheduleReadyReveal](effects); !ok {
		t.Fatal("expected a ScheduleReadyReveal effect")
	}
}

func TestStaleReadyRevealCannotResurrectReadiness(t *testing.T) {
	s := New()
	s, _ = Apply(s, DocumentsLoaded{PDFs: []string{"a.pdf", "b.pdf"}})
	s, effects := Apply(s, IngestRequested{})
	ingest, _ := findEffect[PerformIngest](effects)
	s, effects = Apply(s, IngestSettled{
		Seq:     ingest.Seq,
		Trigger: TriggerManual,
		Outcome: IngestOutcome{Success: true, Chunks: 3, Loaded: []string{"a.pdf", "b.pdf"}},
	})
	reveal, _ := findEffect[ScheduleReadyReveal](effects)

	// A delete failure lands before the reveal timer fires.
	s, effects = Apply(s, DeleteRequested{Filename: "a.pdf"})
	del, _ := findEffect[PerformDelete](effects)
	s, _ = Apply(s, DeleteSettled{Seq: del.Seq, Filename: "a.pdf", PDFs: []string{"b.pdf"}})
	if s.Ready {
		t.Fatal("ready should be false after the delete failure")
	}

	s, _ = Apply(s, ReadyRevealDue{Gen: reveal.Gen})
	if s.Ready {
		t.Fatal("a superseded reveal timer must not set ready")
	}
}

func TestNotificationExpiresOnOwnTimer(t *testing.T) {
	s := New()
	s, effects := Apply(s, Notify{Text: "hello", Severity: SeverityInfo})
	expiry, ok := findEffect[ScheduleNotifyExpiry](effects)
	if !ok {
		t.Fatal("expected a ScheduleNotifyExpiry effect")
	}
	if s.Notification == nil || s.Notification.Text != "hello" {
		t.Fatalf("notification = %+v", s.Notification)
	}

	s, _ = Apply(s, NotifyExpired{Gen: expiry.Gen})
	if s.Notification != nil {
		t.Fatalf("notification survived its own expiry: %+v", s.Notification)
	}
}

func TestTrailingNotificationSurvivesOlderTimer(t *testing.T) {
	s := New()
	s, effects := Apply(s, Notify{Text: "first", Severity: SeverityInfo})
	first, _ := findEffect[ScheduleNotifyExpiry](effects)

	s, _ = Apply(s, Notify{Text: "second", Severity: SeverityError})

	s, _ = Apply(s, NotifyExpired{Gen: first.Gen})
	if s.Notification == nil || s.Notification.Text != "second" {
		t.Fatalf("older timer erased the trailing notification: %+v", s.Notification)
	}
}

func TestFailedBackgroundRefreshKeepsStaleList(t *testing.T) {
	s := New()
	s, _ = Apply(s, DocumentsLoaded{PDFs: []string{"a.pdf"}})
	s, effects := Apply(s, RefreshRequested{})
	fetch, _ := findEffect[FetchDocuments](effects)

	next, _ := Apply(s, DocumentsLoaded{Seq: fetch.Seq, Err: errors.New("unreachable")})
	if len(next.Documents) != 1 || next.Documents[0] != "a.pdf" {
		t.Fatalf("documents = %v, want the stale-but-available copy", next.Documents)
	}
	if next.Notification != nil {
		t.Fatal("background refresh failures must not raise a banner")
	}
}

func TestPhaseComposition(t *testing.T) {
	s := New()
	if s.Phase() != PhaseIdle {
		t.Fatalf("phase = %d, want idle", s.Phase())
	}
	s.Uploading = true
	if s.Phase() != PhaseUploading {
		t.Fatalf("phase = %d, want uploading", s.Phase())
	}
	s.Uploading = false
	s.Ingesting = true
	if s.Phase() != PhaseIngesting {
		t.Fatalf("phase = %d, want ingesting", s.Phase())
	}
	s.Chatting = true
	if s.Phase() != PhaseChatting {
		t.Fatalf("phase = %d, want chatting", s.Phase())
	}
}

func TestIngestSummaryMentionsFailedFiles(t *testing.T) {
	outcome := IngestOutcome{Success: true, Chunks: 7, Loaded: []string{"a.pdf"}, Failed: []string{"b.pdf"}}
	got := outcome.Summary()
	want := "Processed 7 chunks from 1 PDFs (1 failed to load)"
	if got != want {
		t.Fatalf("summary = %q, want %q", got, want)
	}
}
