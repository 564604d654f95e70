// Package media normalizes the audio payload attached to an answer into a
// data URI and decodes it for playback or export. Both paths share Decode so
// they always see identical bytes.
package media

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/vincent-petithory/dataurl"
)

// MP3Prefix tags a raw base64 payload as MP3.
const MP3Prefix = "data:audio/mp3;base64,"

// ErrNoAudio is returned when a payload is empty.
var ErrNoAudio = errors.New("no audio payload")

// Clip is decoded audio with its declared media type.
type Clip struct {
	MediaType string
	Data      []byte
}

// NormalizeAudio turns a payload into a data URI. Payloads already carrying a
// data: prefix are returned unchanged; anything else is treated as raw base64
// MP3. Surrounding whitespace is dropped first. ok is false when nothing else
// remains.
func NormalizeAudio(payload string) (locator string, ok bool) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", false
	}
	if HasLocatorPrefix(payload) {
		return payload, true
	}
	return MP3Prefix + payload, true
}

// HasLocatorPrefix reports whether payload is already a data URI, ignoring
// leading whitespace.
func HasLocatorPrefix(payload string) bool {
	payload = strings.TrimLeftFunc(payload, unicode.IsSpace)
	return len(payload) >= 5 && strings.EqualFold(payload[:5], "data:")
}

// Decode normalizes payload and decodes the resulting data URI.
func Decode(payload string) (Clip, error) {
	locator, ok := NormalizeAudio(payload)
	if !ok {
		return Clip{}, ErrNoAudio
	}
	parsed, err := dataurl.DecodeString(locator)
	if err != nil {
		return Clip{}, fmt.Errorf("decode audio data uri: %w", err)
	}
	if len(parsed.Data) == 0 {
		return Clip{}, ErrNoAudio
	}
	return Clip{MediaType: parsed.ContentType(), Data: parsed.Data}, nil
}
