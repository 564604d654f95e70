package fsm

import "fmt"

// VoiceState tracks the single dictation attempt a coordinator may own.
type VoiceState string

type VoiceEvent string

const (
	VoiceIdle      VoiceState = "idle"
	VoiceListening VoiceState = "listening"
)

const (
	VoiceEventBegin  VoiceEvent = "begin"
	VoiceEventResult VoiceEvent = "result"
	VoiceEventError  VoiceEvent = "error"
	VoiceEventEnd    VoiceEvent = "end"
)

// VoiceTransition returns the next voice state. Any exit event ends a
// listening session; beginning while listening is rejected.
func VoiceTransition(current VoiceState, event VoiceEvent) (VoiceState, error) {
	switch current {
	case VoiceIdle:
		if event == VoiceEventBegin {
			return VoiceListening, nil
		}
		return current, invalidTransition(current, event)
	case VoiceListening:
		switch event {
		case VoiceEventResult, VoiceEventError, VoiceEventEnd:
			return VoiceIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown voice state %q", current)
	}
}

func (s VoiceState) String() string { return string(s) }
func (e VoiceEvent) String() string { return string(e) }
