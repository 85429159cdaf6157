package device

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"rsb-interview-lab/internal/audio"
	"rsb-interview-lab/internal/interview"

	"github.com/gordonklaus/portaudio"
)

var (
	ErrAlreadyPlaying    = errors.New("already playing")
	ErrUnsupportedFormat = errors.New("unsupported audio format for playback")
)

// Speaker plays recorded answers on the default output device.
type Speaker struct {
	mu      sync.Mutex
	playing bool
}

func NewSpeaker() *Speaker {
	return &Speaker{}
}

// Play blocks until the blob has been played or ctx is cancelled.
func (p *Speaker) Play(ctx context.Context, blob *interview.Blob) error {
	samples, rate, channels, err := decode(blob)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return nil
	}

	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return ErrAlreadyPlaying
	}
	p.playing = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
	}()

	return playFloat32(ctx, samples, float64(rate), channels)
}

func (p *Speaker) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func decode(blob *interview.Blob) ([]float32, int, int, error) {
	if blob == nil {
		return nil, 0, 0, fmt.Errorf("%w: no audio", ErrUnsupportedFormat)
	}

	switch blob.MIMEType {
	case audio.MIMEPCM16:
		channels := blob.Channels
		if channels <= 0 {
			channels = audio.DefaultChannels
		}
		rate := blob.SampleRate
		if rate <= 0 {
			rate = audio.DefaultSampleRate
		}
		return audio.PCM16ToFloat32(blob.Data), rate, channels, nil
	case audio.MIMEWAV:
		pcm, rate, channels, err := audio.DecodeWAV(blob.Data)
		if err != nil {
			return nil, 0, 0, err
		}
		return audio.PCM16ToFloat32(pcm), rate, channels, nil
	default:
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, blob.MIMEType)
	}
}

func playFloat32(ctx context.Context, samples []float32, sampleRate float64, channels int) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	const framesPerBuffer = 1024
	buffer := make([]float32, framesPerBuffer*channels)

	stream, err := portaudio.OpenDefaultStream(0, channels, sampleRate, framesPerBuffer, buffer)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	defer stream.Stop()

	for pos := 0; pos < len(samples); pos += len(buffer) {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := copy(buffer, samples[pos:])
		for i := n; i < len(buffer); i++ {
			buffer[i] = 0
		}

		if err := stream.Write(); err != nil {
			return fmt.Errorf("failed to write to stream: %w", err)
		}
	}

	return nil
}
