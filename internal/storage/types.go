package storage

// Transcript is the exported record of one interview session.
type Transcript struct {
	SessionID string        `json:"session_id"`
	Timestamp string        `json:"timestamp"`
	Document  *DocumentInfo `json:"document,omitempty"`
	Entries   []EntryRecord `json:"entries"`
}

// EntryRecord is one question/answer/feedback cycle.
type EntryRecord struct {
	Index       int    `json:"index"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Feedback    string `json:"feedback"`
	AudioFile   string `json:"audio_file,omitempty"`
	AudioBytes  int    `json:"audio_bytes,omitempty"`
	SubmittedAt string `json:"submitted_at"`
}

// DocumentInfo names the uploaded document; its contents are not exported.
type DocumentInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}
