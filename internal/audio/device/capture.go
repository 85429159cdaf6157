// Package device connects interview sessions to the host microphone and
// speakers through PortAudio.
package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"rsb-interview-lab/internal/audio"
	"rsb-interview-lab/internal/interview"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// DefaultFramesPerBuffer is the capture buffer size in frames.
const DefaultFramesPerBuffer = 512

// CaptureConfig holds configuration for the microphone.
type CaptureConfig struct {
	SampleRate float64
	BufferSize int
	Channels   int
	DeviceName string // empty = default input
}

func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		SampleRate: audio.DefaultSampleRate,
		BufferSize: DefaultFramesPerBuffer,
		Channels:   audio.DefaultChannels,
	}
}

// Microphone opens one PortAudio input stream per recording.
type Microphone struct {
	cfg    CaptureConfig
	logger *zap.Logger
}

func NewMicrophone(cfg CaptureConfig, logger *zap.Logger) *Microphone {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = audio.DefaultSampleRate
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultFramesPerBuffer
	}
	if cfg.Channels <= 0 {
		cfg.Channels = audio.DefaultChannels
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Microphone{cfg: cfg, logger: logger}
}

// Open initializes PortAudio and starts capturing. Every failure is reported
// as interview.ErrPermissionDenied or interview.ErrDeviceUnavailable.
func (m *Microphone) Open(ctx context.Context) (interview.AudioStream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, classify("initializing PortAudio", err)
	}

	buffer := make([]float32, m.cfg.BufferSize*m.cfg.Channels)

	stream, err := m.openStream(buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, classify("opening input stream", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, classify("starting input stream", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &micStream{
		stream: stream,
		buffer: buffer,
		chunks: make(chan []byte, 100),
		cancel: cancel,
		done:   make(chan struct{}),
		logger: m.logger,
		format: interview.Format{
			MIMEType:       audio.MIMEPCM16,
			SampleRate:     int(m.cfg.SampleRate),
			Channels:       m.cfg.Channels,
			BytesPerSample: audio.BytesPerSample,
		},
	}
	go s.captureLoop(ctx)

	m.logger.Debug("microphone opened",
		zap.Float64("sample_rate", m.cfg.SampleRate),
		zap.String("device", m.cfg.DeviceName),
	)

	return s, nil
}

func (m *Microphone) openStream(buffer []float32) (*portaudio.Stream, error) {
	if m.cfg.DeviceName == "" || m.cfg.DeviceName == "default" {
		if _, err := portaudio.DefaultInputDevice(); err != nil {
			return nil, fmt.Errorf("%w: no default input device: %v", interview.ErrDeviceUnavailable, err)
		}
		return portaudio.OpenDefaultStream(m.cfg.Channels, 0, m.cfg.SampleRate, m.cfg.BufferSize, buffer)
	}

	dev, err := findInputDevice(m.cfg.DeviceName)
	if err != nil {
		return nil, err
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: m.cfg.Channels,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      m.cfg.SampleRate,
		FramesPerBuffer: m.cfg.BufferSize,
	}
	return portaudio.OpenStream(params, buffer)
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		if dev.Name == name && dev.MaxInputChannels > 0 {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("%w: input device %q not found", interview.ErrDeviceUnavailable, name)
}

// classify maps PortAudio failures onto the session's capture errors.
func classify(op string, err error) error {
	if interview.IsCaptureError(err) {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "denied") || strings.Contains(msg, "not authorized") {
		return fmt.Errorf("%s: %w: %v", op, interview.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w: %v", op, interview.ErrDeviceUnavailable, err)
}

type micStream struct {
	stream *portaudio.Stream
	buffer []float32
	chunks chan []byte
	format interview.Format
	cancel context.CancelFunc
	done   chan struct{}
	logger *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

func (s *micStream) Chunks() <-chan []byte     { return s.chunks }
func (s *micStream) Format() interview.Format { return s.format }

// captureLoop is the only sender on chunks and closes it on exit.
func (s *micStream) captureLoop(ctx context.Context) {
	defer close(s.done)
	defer close(s.chunks)

	for {
		if ctx.Err() != nil {
			return
		}

		if err := s.stream.Read(); err != nil {
			if ctx.Err() != nil || errors.Is(err, portaudio.StreamIsStopped) {
				return
			}
			if errors.Is(err, portaudio.InputOverflowed) {
				continue
			}
			s.logger.Warn("reading microphone", zap.Error(err))
			return
		}

		chunk := audio.Float32ToPCM16(s.buffer)
		select {
		case s.chunks <- chunk:
		case <-ctx.Done():
			return
		}
	}
}

// Close stops the device, waits for the capture loop and terminates PortAudio.
func (s *micStream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		if err := s.stream.Stop(); err != nil {
			s.logger.Debug("stopping input stream", zap.Error(err))
		}
		<-s.done

		if err := s.stream.Close(); err != nil {
			s.closeErr = fmt.Errorf("closing input stream: %w", err)
		}
		if err := portaudio.Terminate(); err != nil && s.closeErr == nil {
			s.closeErr = fmt.Errorf("terminating PortAudio: %w", err)
		}
	})
	return s.closeErr
}
