package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rsb-interview-lab/internal/audio"
	"rsb-interview-lab/internal/interview"
)

func TestSaveTranscript(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	snap := interview.Snapshot{
		ID:     "abc",
		Upload: &interview.Document{Name: "i20.pdf", Size: 1024},
		Entries: []interview.LogEntry{
			{Index: 0, Question: "Q1", Answer: "typed", Feedback: "fb", SubmittedAt: at},
			{
				Index: 1, Question: "Q2", Feedback: "fb", SubmittedAt: at,
				Audio: &interview.Blob{MIMEType: audio.MIMEPCM16, SampleRate: 16000, Channels: 1, Data: []byte{1, 0, 2, 0}},
			},
			{
				Index: 2, Question: "Q3", Feedback: "fb", SubmittedAt: at,
				Audio: &interview.Blob{MIMEType: audio.MIMEOgg, Data: []byte("OggS")},
			},
		},
	}

	path, err := SaveTranscript(dir, snap)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != "interview_abc.json" {
		t.Fatalf("unexpected path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Transcript
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.SessionID != "abc" || len(got.Entries) != 3 || got.Document == nil || got.Document.Name != "i20.pdf" {
		t.Fatalf("unexpected transcript: %+v", got)
	}
	if got.Entries[0].AudioFile != "" {
		t.Fatalf("text entry must not reference audio")
	}
	if got.Entries[1].AudioFile != "interview_abc_02.wav" || got.Entries[1].AudioBytes != 4 {
		t.Fatalf("unexpected pcm entry: %+v", got.Entries[1])
	}
	if got.Entries[2].AudioFile != "interview_abc_03.ogg" {
		t.Fatalf("unexpected ogg entry: %+v", got.Entries[2])
	}

	wav, err := os.ReadFile(filepath.Join(dir, "interview_abc_02.wav"))
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}
	pcm, rate, _, err := audio.DecodeWAV(wav)
	if err != nil || rate != 16000 || len(pcm) != 4 {
		t.Fatalf("bad wav: rate=%d len=%d err=%v", rate, len(pcm), err)
	}

	ogg, _ := os.ReadFile(filepath.Join(dir, "interview_abc_03.ogg"))
	if string(ogg) != "OggS" {
		t.Fatalf("compressed audio must be written as-is")
	}
}

func TestSaveTranscriptEmptyAudio(t *testing.T) {
	dir := t.TempDir()
	snap := interview.Snapshot{
		ID: "empty",
		Entries: []interview.LogEntry{
			{Index: 0, Question: "Q1", Audio: &interview.Blob{MIMEType: audio.MIMEPCM16, SampleRate: 16000}},
		},
	}

	if _, err := SaveTranscript(dir, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "interview_empty_01.wav"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 44 {
		t.Fatalf("expected header-only wav, got %d bytes", info.Size())
	}
}
