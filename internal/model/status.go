package model

import "strings"

const (
	StatusQueued   = "queued"
	StatusStarted  = "started"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Tone is the visual category a job status renders with. Statuses the
// service reports that are not listed here get ToneDefault.
type Tone int

const (
	ToneDefault Tone = iota
	ToneActive
	ToneSuccess
	ToneFailure
)

var statusTones = map[string]Tone{
	StatusQueued:   ToneDefault,
	StatusStarted:  ToneActive,
	StatusFinished: ToneSuccess,
	StatusFailed:   ToneFailure,
}

func NormalizeStatus(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func IsKnownStatus(status string) bool {
	_, ok := statusTones[NormalizeStatus(status)]
	return ok
}

// IsTerminal reports whether a job in this status will not change again.
func IsTerminal(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, StatusFailed:
		return true
	default:
		return false
	}
}

func StatusTone(status string) Tone {
	if tone, ok := statusTones[NormalizeStatus(status)]; ok {
		return tone
	}
	return ToneDefault
}
