package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// WAV is PCM16 audio parsed from a RIFF container.
type WAV struct {
	SampleRate int
	Channels   int
	PCM        []byte
}

// EncodeWAV wraps raw little-endian PCM16 bytes in a minimal WAV header.
func EncodeWAV(pcm []byte, sampleRate int, channels int) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes cannot fail.
	_ = WritePCM16WAV(&buf, pcm, sampleRate, channels)
	return buf.Bytes()
}

// WritePCM16WAV writes a 44-byte WAV header followed by pcm.
func WritePCM16WAV(w io.Writer, pcm []byte, sampleRate int, channels int) error {
	if channels <= 0 {
		channels = 1
	}
	const bitsPerSample = 16
	blockAlign := channels * (bitsPerSample / 8)

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcm)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(pcm)
	return err
}

// IsWAV reports whether data starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// DecodeWAV walks the RIFF chunks of a PCM16 WAV file.
func DecodeWAV(data []byte) (WAV, error) {
	if !IsWAV(data) {
		return WAV{}, errors.New("not a RIFF/WAVE file")
	}

	var (
		out    WAV
		hasFmt bool
	)
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := data[off+8:]
		if size > len(body) {
			size = len(body)
		}
		body = body[:size]

		switch id {
		case "fmt ":
			if size < 16 {
				return WAV{}, errors.New("short fmt chunk")
			}
			format := binary.LittleEndian.Uint16(body[0:2])
			bits := binary.LittleEndian.Uint16(body[14:16])
			if format != 1 || bits != 16 {
				return WAV{}, fmt.Errorf("unsupported wav encoding (format=%d bits=%d)", format, bits)
			}
			out.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			out.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			hasFmt = true
		case "data":
			if !hasFmt {
				return WAV{}, errors.New("data chunk before fmt chunk")
			}
			out.PCM = body
			return out, nil
		}

		// Chunks are word aligned.
		off += 8 + size + size%2
	}
	return WAV{}, errors.New("wav has no data chunk")
}
