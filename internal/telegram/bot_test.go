package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeAPI records Bot API calls and serves canned files.
type fakeAPI struct {
	mu       sync.Mutex
	messages []SendMessageRequest
	voices   []SendVoiceRequest
	files    map[string][]byte
	updates  [][]Update
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Bot) {
	t.Helper()

	api := &fakeAPI{files: make(map[string][]byte)}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)

	return api, New("TOKEN", WithAPIURL(srv.URL), WithHTTPClient(srv.Client()))
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if strings.HasPrefix(r.URL.Path, "/file/botTOKEN/") {
		data, ok := f.files[strings.TrimPrefix(r.URL.Path, "/file/botTOKEN/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/botTOKEN/") {
	case "sendMessage":
		var req SendMessageRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.messages = append(f.messages, req)
		io.WriteString(w, `{"ok":true,"result":{"message_id":1,"chat":{"id":1,"type":"private"}}}`)
	case "sendVoice":
		var req SendVoiceRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.voices = append(f.voices, req)
		io.WriteString(w, `{"ok":true}`)
	case "getFile":
		id := r.URL.Query().Get("file_id")
		data, ok := f.files[id]
		if !ok {
			io.WriteString(w, `{"ok":false,"description":"Bad Request: invalid file_id"}`)
			return
		}
		json.NewEncoder(w).Encode(GetFileResponse{
			OK:     true,
			Result: &File{FileID: id, FilePath: id, FileSize: int64(len(data))},
		})
	case "getUpdates":
		var batch []Update
		if len(f.updates) > 0 {
			batch, f.updates = f.updates[0], f.updates[1:]
		}
		json.NewEncoder(w).Encode(GetUpdatesResponse{OK: true, Result: batch})
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"ok":false,"description":"Not Found"}`)
	}
}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.messages))
	for i, m := range f.messages {
		out[i] = m.Text
	}
	return out
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = nil
	f.voices = nil
}

func TestSendMessageUsesMarkdown(t *testing.T) {
	api, bot := newFakeAPI(t)

	if err := bot.SendMessage(42, "*hi*"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(api.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(api.messages))
	}
	got := api.messages[0]
	if got.ChatID != 42 || got.Text != "*hi*" || got.ParseMode != "Markdown" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestGetFileReturnsAPIDescription(t *testing.T) {
	_, bot := newFakeAPI(t)

	if _, err := bot.GetFile("missing"); err == nil || !strings.Contains(err.Error(), "invalid file_id") {
		t.Fatalf("expected API description in error, got %v", err)
	}
}

func TestDownloadFileEnforcesLimit(t *testing.T) {
	api, bot := newFakeAPI(t)
	api.files["voice/1.oga"] = []byte("OggS-payload")

	file, err := bot.GetFile("voice/1.oga")
	if err != nil {
		t.Fatalf("get file: %v", err)
	}

	data, err := bot.DownloadFile(file, 0)
	if err != nil || string(data) != "OggS-payload" {
		t.Fatalf("download: %q, %v", data, err)
	}

	if _, err := bot.DownloadFile(file, 4); err == nil {
		t.Fatalf("expected size limit error")
	}

	// a file whose declared size lies is still cut off while reading
	lying := &File{FilePath: "voice/1.oga", FileSize: 1}
	if _, err := bot.DownloadFile(lying, 4); err == nil {
		t.Fatalf("expected size limit error while reading")
	}
}

func TestStartPollingDispatchesInOrder(t *testing.T) {
	api, bot := newFakeAPI(t)
	api.updates = [][]Update{
		{{UpdateID: 7}, {UpdateID: 8}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan int, 2)
	go bot.StartPolling(ctx, 0, nopLogger(), func(u Update) { seen <- u.UpdateID })

	var got []int
	for len(got) < 2 {
		select {
		case id := <-seen:
			got = append(got, id)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}
	if got[0] != 7 || got[1] != 8 {
		t.Fatalf("updates must arrive in order: %v", got)
	}
}

func TestStartPollingStopsOnCancel(t *testing.T) {
	_, bot := newFakeAPI(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.StartPolling(ctx, 0, nopLogger(), func(Update) {}) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("polling did not stop")
	}
}
