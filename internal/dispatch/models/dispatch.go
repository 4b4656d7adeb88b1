package models

import "time"

// Method is the closed set of ways a patient can reach a doctor.
type Method string

const (
	MethodCall      Method = "call"
	MethodMessage   Method = "message"
	MethodVideoCall Method = "video_call"
)

// ValidMethod reports whether m is one of the supported contact methods.
func ValidMethod(m Method) bool {
	switch m {
	case MethodCall, MethodMessage, MethodVideoCall:
		return true
	}
	return false
}

// Outcome is the ephemeral result of a dispatch: a descriptor the requester
// can act on (phone number, message channel or session token). Only the
// audit trail is persisted.
type Outcome struct {
	Success    bool      `json:"success"`
	Method     Method    `json:"method"`
	DoctorID   int64     `json:"doctor_id"`
	Descriptor string    `json:"descriptor"`
	Timestamp  time.Time `json:"timestamp"`
}
