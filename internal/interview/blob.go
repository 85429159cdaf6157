package interview

import (
	"time"

	"github.com/google/uuid"
)

// Blob is a finalized audio payload. Its bytes are never modified after
// creation, so entries may share it.
type Blob struct {
	ID         string    `json:"id"`
	MIMEType   string    `json:"mime_type"`
	SampleRate int       `json:"sample_rate,omitempty"`
	Channels   int       `json:"channels,omitempty"`
	Data       []byte    `json:"-"`
	Ref        string    `json:"ref,omitempty"`
	Duration   float64   `json:"duration_seconds,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewBlob concatenates chunks into a single blob. Zero chunks give a valid
// zero-length blob.
func NewBlob(format Format, chunks [][]byte) *Blob {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}

	data := make([]byte, 0, total)
	for _, c := range chunks {
		data = append(data, c...)
	}

	b := &Blob{
		ID:         uuid.New().String(),
		MIMEType:   format.MIMEType,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		Data:       data,
		CreatedAt:  time.Now(),
	}
	b.Duration = format.Seconds(len(data))

	return b
}

// Size returns the payload length in bytes.
func (b *Blob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Format describes the byte layout produced by an AudioStream.
type Format struct {
	MIMEType   string
	SampleRate int
	Channels   int
	// BytesPerSample is zero for compressed formats.
	BytesPerSample int
}

// Seconds converts a byte count into a duration for uncompressed formats.
func (f Format) Seconds(n int) float64 {
	if f.SampleRate <= 0 || f.BytesPerSample <= 0 {
		return 0
	}
	channels := f.Channels
	if channels <= 0 {
		channels = 1
	}
	return float64(n) / float64(f.SampleRate*channels*f.BytesPerSample)
}
