package interview

import "time"

// LogEntry is one completed question/answer/feedback cycle.
type LogEntry struct {
	ID          string    `json:"id"`
	Index       int       `json:"index"`
	Question    Prompt    `json:"question"`
	Answer      string    `json:"answer"`
	Audio       *Blob     `json:"audio,omitempty"`
	Feedback    string    `json:"feedback"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// HasAudio reports whether the entry carries a recording, even an empty one.
func (e LogEntry) HasAudio() bool {
	return e.Audio != nil
}

// Log is an append-only list of entries in submission order.
type Log struct {
	entries []LogEntry
}

func (l *Log) Append(e LogEntry) {
	l.entries = append(l.entries, e)
}

// Entries returns a copy, so callers cannot rewrite history.
func (l *Log) Entries() []LogEntry {
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int {
	return len(l.entries)
}

// At returns the i-th entry.
func (l *Log) At(i int) (LogEntry, bool) {
	if i < 0 || i >= len(l.entries) {
		return LogEntry{}, false
	}
	return l.entries[i], true
}
