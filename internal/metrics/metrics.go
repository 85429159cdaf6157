package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu                  sync.RWMutex
	SessionsStarted     int64
	AnswersSubmitted    int64
	VoiceAnswers        int64
	RecordingsStarted   int64
	RecordingsCompleted int64
	RecordingsFailed    int64
	UploadsSelected     int64
	LastUpdateTime      time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		LastUpdateTime: time.Now(),
	}
}

// The increment methods accept a nil receiver so callers can run without metrics.

func (m *Metrics) IncrementSessionsStarted() {
	m.add(func() { m.SessionsStarted++ })
}

func (m *Metrics) IncrementAnswersSubmitted(withAudio bool) {
	m.add(func() {
		m.AnswersSubmitted++
		if withAudio {
			m.VoiceAnswers++
		}
	})
}

func (m *Metrics) IncrementRecordingsStarted() {
	m.add(func() { m.RecordingsStarted++ })
}

func (m *Metrics) IncrementRecordingsCompleted() {
	m.add(func() { m.RecordingsCompleted++ })
}

func (m *Metrics) IncrementRecordingsFailed() {
	m.add(func() { m.RecordingsFailed++ })
}

func (m *Metrics) IncrementUploadsSelected() {
	m.add(func() { m.UploadsSelected++ })
}

func (m *Metrics) add(fn func()) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
	m.LastUpdateTime = time.Now()
}

// Snapshot is a lock-free copy of the counters.
type Snapshot struct {
	SessionsStarted     int64
	AnswersSubmitted    int64
	VoiceAnswers        int64
	RecordingsStarted   int64
	RecordingsCompleted int64
	RecordingsFailed    int64
	UploadsSelected     int64
	LastUpdateTime      time.Time
}

func (m *Metrics) GetSnapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		SessionsStarted:     m.SessionsStarted,
		AnswersSubmitted:    m.AnswersSubmitted,
		VoiceAnswers:        m.VoiceAnswers,
		RecordingsStarted:   m.RecordingsStarted,
		RecordingsCompleted: m.RecordingsCompleted,
		RecordingsFailed:    m.RecordingsFailed,
		UploadsSelected:     m.UploadsSelected,
		LastUpdateTime:      m.LastUpdateTime,
	}
}
