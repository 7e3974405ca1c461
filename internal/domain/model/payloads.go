package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number decodes a JSON number or a numeric string. Anything else reads as 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler without ever returning an error.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		s = strings.TrimSuffix(strings.TrimSpace(str), "%")
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*n = Number(f)
	}
	return nil
}

// Float returns the value as float64.
func (n Number) Float() float64 { return float64(n) }

// Int truncates the value.
func (n Number) Int() int { return int(n) }

// SourcePerformance is one precomputed row of the analytics endpoint.
type SourcePerformance struct {
	Source         string `json:"source"`
	TotalLeads     Number `json:"total_leads"`
	Converted      Number `json:"converted"`
	ConversionRate Number `json:"conversion_rate"`
}

// Analytics is the analytics snapshot for a date range.
type Analytics struct {
	Success           bool                `json:"success"`
	SourcePerformance []SourcePerformance `json:"sourcePerformance,omitempty"`
}

// ScoredLead is one entry of the lead scoring endpoint.
type ScoredLead struct {
	ID         string   `json:"_id,omitempty"`
	Name       string   `json:"name"`
	Stage      Stage    `json:"stage"`
	Score      Number   `json:"score"`
	ScoreLevel Priority `json:"scoreLevel"`
}

// LeadScores is the lead scoring payload.
type LeadScores struct {
	ScoredLeads []ScoredLead `json:"scoredLeads"`
}

// TeamMember is one row of the team performance endpoint.
type TeamMember struct {
	Name              string `json:"name"`
	ClosedDeals       Number `json:"closedDeals"`
	ConversionRate    Number `json:"conversionRate"`
	PerformanceRating Number `json:"performanceRating"`
}

// TeamPerformance is the team performance payload.
type TeamPerformance struct {
	TeamPerformance []TeamMember `json:"teamPerformance"`
}

// SystemMetrics is the live counter block of the real-time endpoint.
type SystemMetrics struct {
	HotLeads    Number `json:"hotLeads"`
	TotalLeads  Number `json:"totalLeads,omitempty"`
	ActiveCalls Number `json:"activeCalls,omitempty"`
}

// RealtimeMetrics is the real-time endpoint payload.
type RealtimeMetrics struct {
	Success       bool           `json:"success"`
	SystemMetrics *SystemMetrics `json:"systemMetrics,omitempty"`
}
