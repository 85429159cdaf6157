package config

import (
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// AppConfig holds the runtime settings: environment variables and the
// command line flags bound to the same keys.
type AppConfig struct {
	Telegram TelegramConfig
	Audio    AudioConfig
	Export   ExportConfig
}

type TelegramConfig struct {
	Token        string
	APIURL       string
	PollTimeout  time.Duration
	RateLimit    int
	RateWindow   time.Duration
	SessionTTL   time.Duration
	MaxFileBytes int64
}

type AudioConfig struct {
	InputDevice string
	SampleRate  int
}

type ExportConfig struct {
	Dir string
}

// Viper keys of the runtime settings.
const (
	KeyTelegramToken        = "telegram.token"
	KeyTelegramAPIURL       = "telegram.api_url"
	KeyTelegramPollTimeout  = "telegram.poll_timeout"
	KeyTelegramRateLimit    = "telegram.rate_limit"
	KeyTelegramRateWindow   = "telegram.rate_window"
	KeyTelegramSessionTTL   = "telegram.session_ttl"
	KeyTelegramMaxFileBytes = "telegram.max_file_bytes"
	KeyInputDevice          = "audio.input_device"
	KeySampleRate           = "audio.sample_rate"
	KeyExportDir            = "export.dir"
)

var envBindings = []struct {
	key, env string
	def      interface{}
}{
	{KeyTelegramToken, "TELEGRAM_BOT_TOKEN", ""},
	{KeyTelegramAPIURL, "TELEGRAM_API_URL", "https://api.telegram.org"},
	{KeyTelegramPollTimeout, "TELEGRAM_POLL_TIMEOUT", 30 * time.Second},
	{KeyTelegramRateLimit, "TELEGRAM_RATE_LIMIT", 20},
	{KeyTelegramRateWindow, "TELEGRAM_RATE_WINDOW", time.Minute},
	{KeyTelegramSessionTTL, "TELEGRAM_SESSION_TTL", 24 * time.Hour},
	{KeyTelegramMaxFileBytes, "TELEGRAM_MAX_FILE_BYTES", 20 << 20},
	{KeyInputDevice, "INTERVIEW_INPUT_DEVICE", ""},
	{KeySampleRate, "INTERVIEW_SAMPLE_RATE", 16000},
	{KeyExportDir, "INTERVIEW_EXPORT_DIR", "results"},
}

// BindAppEnv registers defaults and environment names for every runtime key.
func BindAppEnv(v *viper.Viper) error {
	for _, b := range envBindings {
		v.SetDefault(b.key, b.def)
		if err := v.BindEnv(b.key, b.env); err != nil {
			return err
		}
	}
	return nil
}

// LoadAppConfig reads the runtime settings from v. Values that do not parse
// fall back to their defaults.
func LoadAppConfig(v *viper.Viper) *AppConfig {
	return &AppConfig{
		Telegram: TelegramConfig{
			Token:        v.GetString(KeyTelegramToken),
			APIURL:       v.GetString(KeyTelegramAPIURL),
			PollTimeout:  durationOr(v, KeyTelegramPollTimeout),
			RateLimit:    intOr(v, KeyTelegramRateLimit),
			RateWindow:   durationOr(v, KeyTelegramRateWindow),
			SessionTTL:   durationOr(v, KeyTelegramSessionTTL),
			MaxFileBytes: int64(intOr(v, KeyTelegramMaxFileBytes)),
		},
		Audio: AudioConfig{
			InputDevice: v.GetString(KeyInputDevice),
			SampleRate:  intOr(v, KeySampleRate),
		},
		Export: ExportConfig{
			Dir: v.GetString(KeyExportDir),
		},
	}
}

func defaultFor(key string) interface{} {
	for _, b := range envBindings {
		if b.key == key {
			return b.def
		}
	}
	return nil
}

func intOr(v *viper.Viper, key string) int {
	if n, err := cast.ToIntE(v.Get(key)); err == nil {
		return n
	}
	return cast.ToInt(defaultFor(key))
}

func durationOr(v *viper.Viper, key string) time.Duration {
	if d, err := cast.ToDurationE(v.Get(key)); err == nil {
		return d
	}
	return cast.ToDuration(defaultFor(key))
}
