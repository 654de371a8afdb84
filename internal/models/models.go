package models

import "time"

// Status tracks where a recruiter record is in its outreach lifecycle.
type Status string

const (
	StatusPending     Status = "pending"
	StatusConnected   Status = "connected"
	StatusUnreachable Status = "unreachable"
)

// Stage distinguishes the first outreach attempt from the follow-up.
type Stage int

const (
	StageFirst Stage = iota + 1
	StageFollowUp
)

func (s Stage) String() string {
	switch s {
	case StageFirst:
		return "first"
	case StageFollowUp:
		return "followup"
	}
	return "unknown"
}

// Channel is the delivery mechanism picked during channel discovery.
type Channel string

const (
	ChannelNote       Channel = "note"
	ChannelMessage    Channel = "message"
	ChannelFollowOnly Channel = "follow_only"
	ChannelNone       Channel = "none"
)

// Outcome classifies a single delivery attempt.
type Outcome int

const (
	// OutcomeSent means text was submitted to the recipient.
	OutcomeSent Outcome = iota
	// OutcomeUnreachable means no usable channel exists for this recipient.
	OutcomeUnreachable
	// OutcomeSafetySkip means recipient identity could not be verified; the
	// record is left untouched so a later run retries it.
	OutcomeSafetySkip
	// OutcomeFailed means a channel was found but submission did not
	// complete (editor or send control missing). Also retried later.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeUnreachable:
		return "unreachable"
	case OutcomeSafetySkip:
		return "safety-skip"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// RecruiterRecord is one row of the outreach ledger. The store serializes
// flags as "TRUE"/empty text and dates as ISO calendar dates; this struct is
// the typed side of that boundary.
type RecruiterRecord struct {
	ID            string
	RecruiterName string
	JobTitle      string
	Company       string
	LinkedInURL   string
	JobURL        string
	Status        Status
	Message1Sent  bool
	Message2Sent  bool
	LastContacted *time.Time
	Notes         string
}

// RecruiterCandidate is a freshly scraped contact, not yet deduplicated
// against the store.
type RecruiterCandidate struct {
	RecruiterName string
	JobTitle      string
	Company       string
	LinkedInURL   string
	JobURL        string
	Notes         string
}
