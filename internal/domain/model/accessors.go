package model

import (
	"strings"
	"time"
)

// TimeField reads one optional date field of a lead.
type TimeField func(Lead) Timestamp

// TextField reads one optional text field of a lead.
type TextField func(Lead) string

// Ordered fallback chains. The first present field wins; a present but
// unparseable date does not fall through to the next field.
var (
	NextContactDate = []TimeField{
		func(l Lead) Timestamp { return l.CallbackDateTime },
		func(l Lead) Timestamp { return l.NextFollowUpDate },
		func(l Lead) Timestamp { return l.NextFollowDate },
	}

	DueDate = []TimeField{
		func(l Lead) Timestamp { return l.NextFollowUpDate },
		func(l Lead) Timestamp { return l.NextFollowUp },
	}

	DisplayName = []TextField{
		func(l Lead) string { return l.LeadName },
		func(l Lead) string { return l.Name },
	}

	FollowUpReason = []TextField{
		func(l Lead) string { return l.CallbackReason },
		func(l Lead) string { return l.NotInterestedReason },
		func(l Lead) string { return l.NextFollow },
	}
)

// Fallback values for the text chains.
const (
	UnknownName     = "Unknown"
	DefaultFollowUp = "Follow-up"
)

// FirstTime evaluates chain in order and parses the first present field.
func FirstTime(l Lead, loc *time.Location, chain []TimeField) (time.Time, bool) {
	for _, field := range chain {
		ts := field(l)
		if ts.Present() {
			return ts.Time(loc)
		}
	}
	return time.Time{}, false
}

// FirstText returns the first non-blank field of chain, or def.
func FirstText(l Lead, chain []TextField, def string) string {
	for _, field := range chain {
		if s := strings.TrimSpace(field(l)); s != "" {
			return s
		}
	}
	return def
}

// NameOf is the display name of a lead.
func NameOf(l Lead) string {
	return FirstText(l, DisplayName, UnknownName)
}
