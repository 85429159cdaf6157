package interview

import (
	"context"
	"sync"
)

type fakeStream struct {
	ch       chan []byte
	format   Format
	mu       sync.Mutex
	closed   bool
	closeErr error
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		ch:     make(chan []byte, 16),
		format: Format{MIMEType: "audio/L16", SampleRate: 16000, Channels: 1, BytesPerSample: 2},
	}
}

func (f *fakeStream) Chunks() <-chan []byte { return f.ch }
func (f *fakeStream) Format() Format        { return f.format }

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
	return f.closeErr
}

func (f *fakeStream) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeSource struct {
	err     error
	streams []*fakeStream
	opened  int
}

func (f *fakeSource) Open(context.Context) (AudioStream, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := newFakeStream()
	f.streams = append(f.streams, s)
	f.opened++
	return s, nil
}

func (f *fakeSource) last() *fakeStream {
	return f.streams[len(f.streams)-1]
}
