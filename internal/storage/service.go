package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rsb-interview-lab/internal/audio"
	"rsb-interview-lab/internal/interview"
)

// SaveTranscript writes interview_<id>.json and one audio file per voiced
// entry into dir. It returns the JSON path. Nothing is ever read back.
func SaveTranscript(dir string, snap interview.Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	transcript := Transcript{
		SessionID: snap.ID,
		Timestamp: time.Now().Format(time.RFC3339),
		Entries:   make([]EntryRecord, 0, len(snap.Entries)),
	}
	if snap.Upload != nil {
		transcript.Document = &DocumentInfo{Name: snap.Upload.Name, Size: snap.Upload.Size}
	}

	for _, e := range snap.Entries {
		rec := EntryRecord{
			Index:       e.Index,
			Question:    string(e.Question),
			Answer:      e.Answer,
			Feedback:    e.Feedback,
			SubmittedAt: e.SubmittedAt.Format(time.RFC3339),
		}

		if e.Audio != nil {
			name, err := writeAudio(dir, snap.ID, e)
			if err != nil {
				return "", err
			}
			rec.AudioFile = name
			rec.AudioBytes = e.Audio.Size()
		}

		transcript.Entries = append(transcript.Entries, rec)
	}

	jsonData, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing transcript: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("interview_%s.json", snap.ID))
	if err := os.WriteFile(path, jsonData, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}

	return path, nil
}

func writeAudio(dir, sessionID string, e interview.LogEntry) (string, error) {
	data := e.Audio.Data
	if e.Audio.MIMEType == audio.MIMEPCM16 {
		data = audio.EncodeWAV(data, e.Audio.SampleRate, e.Audio.Channels)
	}

	name := fmt.Sprintf("interview_%s_%02d%s", sessionID, e.Index+1, audio.Extension(e.Audio.MIMEType))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}

	return name, nil
}
