package session

import "fmt"

// NoticeKind classifies a Notice.
type NoticeKind int

const (
	// NoticeInfo carries a result meant for reading, such as a comparison.
	NoticeInfo NoticeKind = iota
	// NoticeFailure reports a failed engine request. Playback is unaffected.
	NoticeFailure
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeInfo:
		return "info"
	case NoticeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k NoticeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind encoded by MarshalText.
func (k *NoticeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*k = NoticeInfo
	case "failure":
		*k = NoticeFailure
	default:
		return fmt.Errorf("unknown notice kind %q", text)
	}
	return nil
}

// Notice is a message for the user that is not part of a frame.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}
