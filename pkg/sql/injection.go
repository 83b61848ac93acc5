package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionFinding describes an injection fingerprint detected in user input.
type InjectionFinding struct {
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// CheckQuestion runs libinjection over a user question. The pipeline does
// not block on a finding — questions legitimately mention SQL — but the
// finding is recorded on the debug log for review.
//
// Returns nil when nothing suspicious is detected.
func CheckQuestion(question string) *InjectionFinding {
	isSQLi, fingerprint := libinjection.IsSQLi(question)
	if !isSQLi {
		return nil
	}
	return &InjectionFinding{Fingerprint: string(fingerprint)}
}
