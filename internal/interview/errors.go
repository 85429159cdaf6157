package interview

import "errors"

var (
	// ErrPermissionDenied means the host refused microphone access.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrDeviceUnavailable means no usable capture device was found.
	ErrDeviceUnavailable = errors.New("microphone unavailable")

	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
	ErrEmptyDraft       = errors.New("answer is empty: type a response or record audio")
	ErrNoPrompts        = errors.New("question set is empty")
	ErrSessionClosed    = errors.New("session closed")
)

// IsCaptureError reports whether err is a microphone access failure that
// should be shown to the user as a notice.
func IsCaptureError(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrDeviceUnavailable)
}
