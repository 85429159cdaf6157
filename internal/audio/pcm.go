// Package audio converts captured samples into the byte layouts stored in
// interview blobs.
package audio

import (
	"encoding/binary"
	"math"
)

const (
	// MIMEPCM16 is raw signed 16-bit little-endian PCM.
	MIMEPCM16 = "audio/L16"
	MIMEWAV   = "audio/wav"
	MIMEOgg   = "audio/ogg"

	// DefaultSampleRate is the capture rate used by the microphone source.
	DefaultSampleRate = 16000
	DefaultChannels   = 1
	BytesPerSample    = 2
)

// Float32ToPCM16 clamps samples to [-1, 1] and encodes them as int16.
func Float32ToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(math.Round(v*math.MaxInt16))))
	}
	return out
}

// PCM16ToFloat32 decodes int16 samples; a trailing odd byte is dropped.
func PCM16ToFloat32(data []byte) []float32 {
	n := len(data) / BytesPerSample
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		out[i] = float32(s) / 32768.0
	}
	return out
}

// Level returns the RMS level of a PCM16 chunk in [0, 1].
func Level(data []byte) float64 {
	samples := PCM16ToFloat32(data)
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
