package interview

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// AudioSource acquires a capture device. Open may block while the host asks
// for permission.
type AudioSource interface {
	Open(ctx context.Context) (AudioStream, error)
}

// AudioStream delivers captured chunks until closed. Close stops capture,
// releases the device and closes the Chunks channel.
type AudioStream interface {
	Chunks() <-chan []byte
	Format() Format
	Close() error
}

// RecordingSession owns one stream and the single goroutine consuming it.
type RecordingSession struct {
	stream  AudioStream
	format  Format
	started time.Time
	chunks  [][]byte
	size    atomic.Int64
	done    chan struct{}
}

func openRecording(ctx context.Context, src AudioSource) (*RecordingSession, error) {
	if src == nil {
		return nil, ErrDeviceUnavailable
	}

	stream, err := src.Open(ctx)
	if err != nil {
		if IsCaptureError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	r := &RecordingSession{
		stream:  stream,
		format:  stream.Format(),
		started: time.Now(),
		done:    make(chan struct{}),
	}
	go r.collect()

	return r, nil
}

func (r *RecordingSession) collect() {
	defer close(r.done)
	for chunk := range r.stream.Chunks() {
		r.chunks = append(r.chunks, chunk)
		r.size.Add(int64(len(chunk)))
	}
}

// Elapsed returns the time since capture started.
func (r *RecordingSession) Elapsed() time.Duration {
	return time.Since(r.started)
}

// Bytes returns how much audio has been collected so far.
func (r *RecordingSession) Bytes() int64 {
	return r.size.Load()
}

// finish releases the stream, waits for the collector and assembles the blob.
// The blob is returned even when closing the device failed.
func (r *RecordingSession) finish() (*Blob, error) {
	closeErr := r.stream.Close()
	<-r.done

	blob := NewBlob(r.format, r.chunks)
	r.chunks = nil

	if closeErr != nil {
		return blob, fmt.Errorf("closing capture stream: %w", closeErr)
	}
	return blob, nil
}
