package telegram

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rsb-interview-lab/internal/config"
	"rsb-interview-lab/internal/metrics"
	"rsb-interview-lab/internal/storage"

	"go.uber.org/zap"
)

func nopLogger() *zap.Logger { return zap.NewNop() }

func newTestHandler(t *testing.T) (*fakeAPI, *Handler) {
	t.Helper()
	api, bot := newFakeAPI(t)
	h := NewHandler(bot, HandlerOptions{
		Questions: config.Default(),
		ExportDir: t.TempDir(),
		Metrics:   metrics.NewMetrics(),
		Logger:    nopLogger(),
	})
	return api, h
}

func textUpdate(userID int64, text string) Update {
	return Update{Message: &Message{
		From: &User{ID: userID},
		Chat: &Chat{ID: userID, Type: "private"},
		Text: text,
	}}
}

func withID(id int, u Update) Update {
	u.UpdateID = id
	return u
}

func lastText(t *testing.T, api *fakeAPI) string {
	t.Helper()
	texts := api.texts()
	if len(texts) == 0 {
		t.Fatalf("no messages sent")
	}
	return texts[len(texts)-1]
}

func TestStartShowsUpsellAndFirstQuestion(t *testing.T) {
	api, h := newTestHandler(t)

	h.HandleUpdate(textUpdate(1, "/start"))

	texts := api.texts()
	if len(texts) != 2 {
		t.Fatalf("expected welcome and question, got %q", texts)
	}
	if !strings.Contains(texts[0], "purchase access") {
		t.Fatalf("welcome must carry the upsell notice: %q", texts[0])
	}
	if !strings.Contains(texts[1], "Question 1/5") || !strings.Contains(texts[1], "Why do you want to study") {
		t.Fatalf("unexpected question: %q", texts[1])
	}
}

func TestUpsellCanBeDisabled(t *testing.T) {
	api, bot := newFakeAPI(t)
	cfg := config.Default()
	cfg.Upsell.Enabled = false
	h := NewHandler(bot, HandlerOptions{Questions: cfg})

	h.HandleUpdate(textUpdate(1, "/start"))

	if strings.Contains(api.texts()[0], "purchase") {
		t.Fatalf("upsell must be hidden")
	}
}

func TestSubmitWithoutDraftIsRejected(t *testing.T) {
	api, h := newTestHandler(t)

	h.HandleUpdate(textUpdate(1, "/submit"))

	if !strings.Contains(lastText(t, api), "first") {
		t.Fatalf("expected a hint, got %q", lastText(t, api))
	}
	if n := len(h.sessions[1].Session.Entries()); n != 0 {
		t.Fatalf("log must stay empty, got %d", n)
	}
}

func TestTextSubmitFlow(t *testing.T) {
	api, h := newTestHandler(t)

	h.HandleUpdate(textUpdate(1, "To study data science"))
	h.HandleUpdate(textUpdate(1, "/submit"))

	texts := api.texts()
	feedback := texts[len(texts)-2]
	if !strings.Contains(feedback, "To study data science") || !strings.Contains(feedback, "Feedback") {
		t.Fatalf("unexpected entry message: %q", feedback)
	}
	if !strings.Contains(lastText(t, api), "Question 2/5") {
		t.Fatalf("expected the second question, got %q", lastText(t, api))
	}

	s := h.sessions[1].Session
	if s.Draft().Text != "" {
		t.Fatalf("draft must be cleared")
	}
}

func TestVoiceAnswerIsAttachedAndResent(t *testing.T) {
	api, h := newTestHandler(t)
	api.files["voice-1"] = []byte("OggS")

	h.HandleUpdate(Update{Message: &Message{
		From:  &User{ID: 5},
		Chat:  &Chat{ID: 5},
		Voice: &Voice{FileID: "voice-1", Duration: 3, MimeType: "audio/ogg"},
	}})

	draft := h.sessions[5].Session.Draft()
	if draft.Audio == nil || string(draft.Audio.Data) != "OggS" || draft.Audio.Ref != "voice-1" {
		t.Fatalf("unexpected draft audio: %+v", draft.Audio)
	}

	h.HandleUpdate(textUpdate(5, "/submit"))
	entries := h.sessions[5].Session.Entries()
	if len(entries) != 1 || entries[0].Answer != "" || !entries[0].HasAudio() {
		t.Fatalf("unexpected log: %+v", entries)
	}

	api.reset()
	h.HandleUpdate(textUpdate(5, "/log"))

	if len(api.voices) != 1 || api.voices[0].Voice != "voice-1" {
		t.Fatalf("expected the voice note to be re-sent, got %+v", api.voices)
	}
}

func TestVoiceDownloadFailureKeepsDraft(t *testing.T) {
	api, h := newTestHandler(t)

	h.HandleUpdate(textUpdate(2, "typed"))
	h.HandleUpdate(Update{Message: &Message{
		From:  &User{ID: 2},
		Chat:  &Chat{ID: 2},
		Voice: &Voice{FileID: "gone"},
	}})

	if !strings.Contains(lastText(t, api), "Could not fetch") {
		t.Fatalf("expected a notice, got %q", lastText(t, api))
	}
	draft := h.sessions[2].Session.Draft()
	if draft.Text != "typed" || draft.Audio != nil {
		t.Fatalf("draft must be unchanged: %+v", draft)
	}
	if got := h.metrics.GetSnapshot().RecordingsFailed; got != 1 {
		t.Fatalf("expected one failed recording, got %d", got)
	}
}

func TestDocumentReplacesUpload(t *testing.T) {
	_, h := newTestHandler(t)

	for _, name := range []string{"passport.pdf", "i20.pdf"} {
		h.HandleUpdate(Update{Message: &Message{
			From:     &User{ID: 3},
			Chat:     &Chat{ID: 3},
			Document: &Document{FileID: "f-" + name, FileName: name, FileSize: 10},
		}})
	}

	doc, ok := h.sessions[3].Session.Upload()
	if !ok || doc.Name != "i20.pdf" || doc.Ref != "f-i20.pdf" {
		t.Fatalf("unexpected upload: %+v", doc)
	}
}

func TestExportWritesTranscript(t *testing.T) {
	api, h := newTestHandler(t)

	h.HandleUpdate(textUpdate(4, "answer"))
	h.HandleUpdate(textUpdate(4, "/submit"))
	h.HandleUpdate(textUpdate(4, "/export"))

	id := h.sessions[4].Session.ID()
	data, err := os.ReadFile(filepath.Join(h.exportDir, "interview_"+id+".json"))
	if err != nil {
		t.Fatalf("transcript not written: %v (%q)", err, lastText(t, api))
	}

	var tr storage.Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tr.Entries) != 1 || tr.Entries[0].Answer != "answer" {
		t.Fatalf("unexpected transcript: %+v", tr)
	}
}

func TestResetStartsNewSession(t *testing.T) {
	_, h := newTestHandler(t)

	h.HandleUpdate(textUpdate(6, "answer"))
	h.HandleUpdate(textUpdate(6, "/submit"))
	before := h.sessions[6].Session.ID()

	h.HandleUpdate(textUpdate(6, "/reset"))

	s := h.sessions[6].Session
	if s.ID() == before {
		t.Fatalf("expected a new session")
	}
	if cursor, _ := s.Progress(); cursor != 0 || len(s.Entries()) != 0 {
		t.Fatalf("new session must start fresh")
	}
}

func TestAnyTextReplacesDraft(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"normal", "I was admitted to a master's program"},
		{"repeated characters", strings.Repeat("a", 50)},
		{"long cyrillic", strings.Repeat("я", 3000)},
		{"longer than 4000 bytes", strings.Repeat("ab", 2500)},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestHandler(t)
			userID := int64(100 + i)

			h.HandleUpdate(textUpdate(userID, tt.input))

			if got := h.sessions[userID].Session.Draft().Text; got != tt.input {
				t.Fatalf("draft has %d bytes, want %d", len(got), len(tt.input))
			}
		})
	}
}

func TestPolledBatchIsHandledInOrder(t *testing.T) {
	api, h := newTestHandler(t)
	api.updates = [][]Update{{
		withID(1, textUpdate(1, "My answer")),
		withID(2, textUpdate(1, "/submit")),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.bot.StartPolling(ctx, 0, nopLogger(), h.HandleUpdate)

	deadline := time.After(2 * time.Second)
	for {
		texts := api.texts()
		if len(texts) >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out, sent %q", texts)
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	texts := api.texts()
	if !strings.Contains(texts[0], "draft") {
		t.Fatalf("text must be handled first, got %q", texts[0])
	}
	if !strings.Contains(texts[1], "My answer") {
		t.Fatalf("submit must log the typed answer, got %q", texts[1])
	}
	if !strings.Contains(texts[2], "Question 2/5") {
		t.Fatalf("expected the next question, got %q", texts[2])
	}
}

func TestEscapeMarkdown(t *testing.T) {
	got := escapeMarkdown("my_file *v2* `x` [a]")
	want := "my\\_file \\*v2\\* \\`x\\` \\[a]"
	if got != want {
		t.Fatalf("escapeMarkdown() = %q, want %q", got, want)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.IsAllowed(1) || !rl.IsAllowed(1) {
		t.Fatalf("first two requests must pass")
	}
	if rl.IsAllowed(1) {
		t.Fatalf("third request must be limited")
	}
	if !rl.IsAllowed(2) {
		t.Fatalf("limits are per user")
	}

	now = now.Add(time.Minute)
	if !rl.IsAllowed(1) {
		t.Fatalf("window must slide")
	}
}

func TestCleanupDropsIdleSessions(t *testing.T) {
	_, h := newTestHandler(t)

	h.HandleUpdate(textUpdate(7, "/status"))
	h.HandleUpdate(textUpdate(8, "/status"))
	h.sessions[7].LastActivity = time.Now().Add(-48 * time.Hour)

	h.cleanupInactiveSessions(time.Now().Add(-24 * time.Hour))

	if _, ok := h.sessions[7]; ok {
		t.Fatalf("idle session must be dropped")
	}
	if _, ok := h.sessions[8]; !ok {
		t.Fatalf("active session must stay")
	}
}

func TestCleanupSkipsBusySession(t *testing.T) {
	_, h := newTestHandler(t)

	h.HandleUpdate(textUpdate(7, "/status"))
	us := h.sessions[7]
	us.LastActivity = time.Now().Add(-48 * time.Hour)

	us.mu.Lock()
	h.cleanupInactiveSessions(time.Now().Add(-24 * time.Hour))
	us.mu.Unlock()

	if _, ok := h.sessions[7]; !ok {
		t.Fatalf("session handling an update must not be dropped")
	}
	if us.expired {
		t.Fatalf("busy session must not be closed")
	}
}

func TestExpiredSessionIsReplaced(t *testing.T) {
	_, h := newTestHandler(t)

	h.HandleUpdate(textUpdate(7, "old draft"))
	old := h.sessions[7]
	old.LastActivity = time.Now().Add(-48 * time.Hour)
	h.cleanupInactiveSessions(time.Now().Add(-24 * time.Hour))

	if !old.expired {
		t.Fatalf("idle session must be marked expired")
	}

	h.HandleUpdate(textUpdate(7, "new draft"))

	us := h.sessions[7]
	if us == old || us.Session.Draft().Text != "new draft" {
		t.Fatalf("expected a fresh session")
	}
	if got := old.Session.Draft().Text; got != "old draft" {
		t.Fatalf("expired session must not receive updates, draft = %q", got)
	}
}
