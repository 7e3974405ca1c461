// Package model contains the lead records and collaborator payloads passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Stage is a pipeline stage. The set is open; unknown values are carried as-is.
type Stage string

// Known stages.
const (
	StageNewLead     Stage = "New Lead"
	StageContacted   Stage = "Contacted"
	StageNegotiation Stage = "Negotiation"
	StageClosedWon   Stage = "Closed Won"
	StageWon         Stage = "Won"
	StageClosedLost  Stage = "Closed Lost"
)

// IsConverted reports whether the stage counts as a won deal.
// "Won" and "Closed Won" are synonyms.
func (s Stage) IsConverted() bool {
	return s == StageClosedWon || s == StageWon
}

// IsTerminal reports whether the lead left the active pipeline.
func (s Stage) IsTerminal() bool {
	return s.IsConverted() || s == StageClosedLost
}

// Priority is the lead temperature.
type Priority string

// Known priorities.
const (
	PriorityHot  Priority = "Hot"
	PriorityWarm Priority = "Warm"
	PriorityCold Priority = "Cold"
)

// Lead is one CRM record as served by the leads collaborator. The core
// never mutates a Lead.
type Lead struct {
	ID       string `json:"_id,omitempty"`
	Name     string `json:"name,omitempty"`
	LeadName string `json:"leadName,omitempty"`

	CreatedAt Timestamp `json:"createdAt"`
	Stage     Stage     `json:"stage,omitempty"`
	Source    string    `json:"source,omitempty"`
	Priority  Priority  `json:"priority,omitempty"`

	// AssignedCaller is an id or an embedded object depending on the backend.
	AssignedCaller     json.RawMessage `json:"assignedCaller,omitempty"`
	AssignedCallerName string          `json:"assignedCallerName,omitempty"`

	CallbackDateTime Timestamp `json:"callbackDateTime"`
	NextFollowUpDate Timestamp `json:"nextFollowUpDate"`
	NextFollowDate   Timestamp `json:"nextFollowDate"`
	NextFollowUp     Timestamp `json:"nextFollowUp"`

	CallbackReason      string `json:"callbackReason,omitempty"`
	NotInterestedReason string `json:"notInterestedReason,omitempty"`
	NextFollow          string `json:"nextFollow,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id".
func (l *Lead) UnmarshalJSON(b []byte) error {
	type plain Lead
	aux := struct {
		*plain
		AltID string `json:"id"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if l.ID == "" {
		l.ID = aux.AltID
	}
	return nil
}

// HasCallerID reports whether assignedCaller holds a usable value.
func (l Lead) HasCallerID() bool {
	raw := bytes.TrimSpace(l.AssignedCaller)
	switch string(raw) {
	case "", "null", `""`, "false", "0":
		return false
	}
	return true
}

// IsAssigned reports whether the lead has a caller by id or by name.
func (l Lead) IsAssigned() bool {
	return l.HasCallerID() || strings.TrimSpace(l.AssignedCallerName) != ""
}

// SourceOrUnknown returns the grouping key for source rankings.
func (l Lead) SourceOrUnknown() string {
	if s := strings.TrimSpace(l.Source); s != "" {
		return s
	}
	return "Unknown"
}

// CallerOrUnassigned returns the grouping key for agent rankings.
func (l Lead) CallerOrUnassigned() string {
	if s := strings.TrimSpace(l.AssignedCallerName); s != "" {
		return s
	}
	return "Unassigned"
}
