package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const wavHeaderSize = 44

var ErrInvalidWAV = errors.New("invalid WAV data")

// EncodeWAV wraps PCM16 data in a canonical RIFF/WAVE header.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	if channels <= 0 {
		channels = DefaultChannels
	}
	blockAlign := channels * BytesPerSample
	byteRate := sampleRate * blockAlign

	out := make([]byte, wavHeaderSize+len(pcm))
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+len(pcm)))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 8*BytesPerSample)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(len(pcm)))
	copy(out[wavHeaderSize:], pcm)

	return out
}

// DecodeWAV walks the RIFF chunks and returns the PCM payload with its format.
func DecodeWAV(data []byte) (pcm []byte, sampleRate int, channels int, err error) {
	if len(data) < wavHeaderSize {
		return nil, 0, 0, fmt.Errorf("%w: too small", ErrInvalidWAV)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, 0, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidWAV)
	}

	dataStart, dataSize := -1, 0
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))

		switch id {
		case "fmt ":
			if size >= 16 && pos+24 <= len(data) {
				channels = int(binary.LittleEndian.Uint16(data[pos+10:]))
				sampleRate = int(binary.LittleEndian.Uint32(data[pos+12:]))
			}
		case "data":
			dataStart = pos + 8
			dataSize = size
		}

		pos += 8 + size
		if pos%2 != 0 {
			pos++
		}
	}

	if sampleRate == 0 || dataStart < 0 {
		return nil, 0, 0, fmt.Errorf("%w: missing fmt or data chunk", ErrInvalidWAV)
	}
	if dataStart+dataSize > len(data) {
		dataSize = len(data) - dataStart
	}

	return data[dataStart : dataStart+dataSize], sampleRate, channels, nil
}

// Extension maps a blob MIME type to a file extension for export.
func Extension(mimeType string) string {
	switch mimeType {
	case MIMEPCM16, MIMEWAV:
		return ".wav"
	case MIMEOgg:
		return ".ogg"
	case "audio/mpeg":
		return ".mp3"
	case "audio/webm":
		return ".webm"
	default:
		return ".bin"
	}
}
