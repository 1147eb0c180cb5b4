package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSectionEnter  EventType = "section_enter"
	EventRuleEvaluated EventType = "rule_evaluated"
	EventOutcome       EventType = "outcome"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// SectionEvent fires when a run enters a section.
type SectionEvent struct {
	EventBase
	SectionID string `json:"section_id"`
}

// RuleEvent fires for every rule evaluation at a condition node.
type RuleEvent struct {
	EventBase
	NodeID  string `json:"node_id"`
	RuleID  string `json:"rule_id"`
	FieldID string `json:"field_id"`
	Result  bool   `json:"result"`
}

// OutcomeEvent fires when a run reaches a terminal outcome.
type OutcomeEvent struct {
	EventBase
	Outcome Outcome `json:"outcome"`
}

// LifecycleHooks defines callbacks for engine observability. Nil hooks
// are skipped.
type LifecycleHooks struct {
	OnSectionEnter  func(context.Context, *SectionEvent)
	OnRuleEvaluated func(context.Context, *RuleEvent)
	OnOutcome       func(context.Context, *OutcomeEvent)
}
