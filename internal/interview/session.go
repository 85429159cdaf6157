package interview

import (
	"context"
	"sync"
	"time"

	"rsb-interview-lab/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the recording state of a session.
type State int

const (
	StateIdle State = iota
	StateRecording
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	default:
		return "unknown"
	}
}

// Options configures a Session. Zero values fall back to the defaults.
type Options struct {
	Prompts  []Prompt
	Feedback string
	Source   AudioSource
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	Now      func() time.Time
}

// Session owns the sequencer, draft, upload slot and log of one interview and
// serializes every transition.
type Session struct {
	mu       sync.Mutex
	id       string
	seq      *Sequencer
	draft    Draft
	upload   UploadSlot
	log      Log
	feedback string
	source   AudioSource
	rec      *RecordingSession
	starting bool
	closed   bool

	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewSession(opts Options) (*Session, error) {
	prompts := opts.Prompts
	if prompts == nil {
		prompts = DefaultPrompts
	}
	seq, err := NewSequencer(prompts)
	if err != nil {
		return nil, err
	}

	feedback := opts.Feedback
	if feedback == "" {
		feedback = DefaultFeedback
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Session{
		id:       uuid.New().String(),
		seq:      seq,
		feedback: feedback,
		source:   opts.Source,
		metrics:  opts.Metrics,
		now:      now,
	}
	s.logger = logger.With(zap.String("session_id", s.id))
	s.metrics.IncrementSessionsStarted()

	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) CurrentPrompt() Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.Current()
}

// Progress returns the zero-based cursor and the number of prompts.
func (s *Session) Progress() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.Cursor(), s.seq.Len()
}

func (s *Session) Prompts() []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.Prompts()
}

// SetText replaces the draft text.
func (s *Session) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Text = text
}

// AttachAudio sets the draft audio to a blob recorded elsewhere.
func (s *Session) AttachAudio(blob *Blob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Audio = blob
}

func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// StartRecording acquires the microphone. The lock is not held while the
// source is opened, so other transitions keep working during a permission
// prompt.
func (s *Session) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrSessionClosed
	case s.rec != nil || s.starting:
		s.mu.Unlock()
		return ErrAlreadyRecording
	}
	s.starting = true
	source := s.source
	s.mu.Unlock()

	rec, err := openRecording(ctx, source)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.starting = false

	if err != nil {
		s.metrics.IncrementRecordingsFailed()
		s.logger.Warn("starting recording", zap.Error(err))
		return err
	}

	if s.closed {
		if _, closeErr := rec.finish(); closeErr != nil {
			s.logger.Warn("releasing capture after close", zap.Error(closeErr))
		}
		return ErrSessionClosed
	}

	s.rec = rec
	s.metrics.IncrementRecordingsStarted()
	s.logger.Debug("recording started", zap.String("mime_type", rec.format.MIMEType))

	return nil
}

// StopRecording finalizes the active recording into the draft audio.
func (s *Session) StopRecording() (*Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec == nil {
		return nil, ErrNotRecording
	}

	rec := s.rec
	s.rec = nil

	blob, err := rec.finish()
	s.draft.Audio = blob
	s.metrics.IncrementRecordingsCompleted()

	s.logger.Debug("recording stopped",
		zap.Int("bytes", blob.Size()),
		zap.Duration("elapsed", rec.Elapsed()),
	)

	if err != nil {
		s.logger.Warn("stopping recording", zap.Error(err))
	}

	return blob, err
}

func (s *Session) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec != nil
}

func (s *Session) State() State {
	if s.IsRecording() {
		return StateRecording
	}
	return StateIdle
}

// RecordingProgress returns the elapsed time and collected bytes of the
// active recording.
func (s *Session) RecordingProgress() (time.Duration, int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return 0, 0, false
	}
	return s.rec.Elapsed(), s.rec.Bytes(), true
}

// SelectFile replaces the uploaded document.
func (s *Session) SelectFile(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.SelectedAt.IsZero() {
		doc.SelectedAt = s.now()
	}
	s.upload.Select(doc)
	s.metrics.IncrementUploadsSelected()

	s.logger.Info("document selected", zap.String("name", doc.Name), zap.Int64("size", doc.Size))
}

func (s *Session) Upload() (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upload.Current()
}

func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Submittable()
}

// Submit logs the draft against the current prompt, clears the draft and
// advances to the next prompt. The recording state is left as it is.
func (s *Session) Submit() (LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.draft.Submittable() {
		return LogEntry{}, ErrEmptyDraft
	}

	entry := LogEntry{
		ID:          uuid.New().String(),
		Index:       s.log.Len(),
		Question:    s.seq.Current(),
		Answer:      s.draft.Text,
		Audio:       s.draft.Audio,
		Feedback:    s.feedback,
		SubmittedAt: s.now(),
	}

	s.log.Append(entry)
	s.draft = Draft{}
	s.seq.Advance()
	s.metrics.IncrementAnswersSubmitted(entry.HasAudio())

	s.logger.Info("answer submitted",
		zap.Int("index", entry.Index),
		zap.Bool("audio", entry.HasAudio()),
		zap.Int("next_prompt", s.seq.Cursor()),
	)

	return entry, nil
}

func (s *Session) Entries() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

func (s *Session) Entry(i int) (LogEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.At(i)
}

// Snapshot is a consistent read of the whole session for rendering.
type Snapshot struct {
	ID        string
	Prompt    Prompt
	Cursor    int
	Total     int
	Draft     Draft
	Recording bool
	Upload    *Document
	Entries   []LogEntry
	CanSubmit bool
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		Prompt:    s.seq.Current(),
		Cursor:    s.seq.Cursor(),
		Total:     s.seq.Len(),
		Draft:     s.draft,
		Recording: s.rec != nil,
		Entries:   s.log.Entries(),
		CanSubmit: s.draft.Submittable(),
	}
	if doc, ok := s.upload.Current(); ok {
		snap.Upload = &doc
	}

	return snap
}

// Close releases an active recording. The session rejects new recordings
// afterwards but keeps its log readable.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.rec == nil {
		return nil
	}

	rec := s.rec
	s.rec = nil
	_, err := rec.finish()

	return err
}
