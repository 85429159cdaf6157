package cmd

import (
	"rsb-interview-lab/internal/audio/device"
	"rsb-interview-lab/internal/config"
	"rsb-interview-lab/internal/interview"
	"rsb-interview-lab/internal/metrics"

	"go.uber.org/zap"
)

// newLocalSession builds a session recording from the host microphone.
func newLocalSession(logger *zap.Logger, questions *config.Config, appCfg *config.AppConfig, m *metrics.Metrics) (*interview.Session, error) {
	capture := device.DefaultCaptureConfig()
	capture.DeviceName = appCfg.Audio.InputDevice
	if appCfg.Audio.SampleRate > 0 {
		capture.SampleRate = float64(appCfg.Audio.SampleRate)
	}

	return interview.NewSession(interview.Options{
		Prompts:  questions.Prompts(),
		Feedback: questions.Feedback,
		Source:   device.NewMicrophone(capture, logger),
		Metrics:  m,
		Logger:   logger,
	})
}
