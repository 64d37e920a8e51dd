package model

import (
	"strings"
	"testing"
)

func TestDeltaStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from  DeltaStatus
		to    DeltaStatus
		legal bool
	}{
		{StatusIdentified, StatusApproved, true},
		{StatusIdentified, StatusDenied, true},
		{StatusApproved, StatusIncluded, true},
		{StatusIdentified, StatusIncluded, false},
		{StatusDenied, StatusIncluded, false},
		{StatusDenied, StatusApproved, false},
		{StatusIncluded, StatusApproved, false},
		{StatusIncluded, StatusIdentified, false},
		{StatusApproved, StatusDenied, false},
		{StatusApproved, StatusApproved, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.legal {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.legal)
		}
	}
}

func TestDeltaItem_Transition_Legal(t *testing.T) {
	d := DeltaItem{Description: "Drip edge", Status: StatusIdentified}

	if err := d.Transition(StatusApproved); err != nil {
		t.Fatalf("identified -> approved: unexpected error %v", err)
	}
	if d.Status != StatusApproved {
		t.Errorf("status = %q, want approved", d.Status)
	}

	if err := d.Transition(StatusIncluded); err != nil {
		t.Fatalf("approved -> included: unexpected error %v", err)
	}
	if d.Status != StatusIncluded {
		t.Errorf("status = %q, want included", d.Status)
	}
}

func TestDeltaItem_Transition_IllegalNamesOffendingMove(t *testing.T) {
	d := DeltaItem{Description: "Ridge cap", Status: StatusDenied}

	err := d.Transition(StatusIncluded)
	if err == nil {
		t.Fatal("denied -> included should be rejected")
	}
	if !strings.Contains(err.Error(), "denied") || !strings.Contains(err.Error(), "included") {
		t.Errorf("error should name the offending transition, got: %v", err)
	}
	if d.Status != StatusDenied {
		t.Errorf("status must not be coerced on illegal transition, got %q", d.Status)
	}
}

func TestTriggerCondition_Holds(t *testing.T) {
	tests := []struct {
		name    string
		trigger TriggerCondition
		ctx     ScopeContext
		want    bool
	}{
		{"always", TriggerCondition{Always: true}, ScopeContext{}, true},
		{"zero condition holds", TriggerCondition{}, ScopeContext{}, true},
		{"pitch at threshold", TriggerCondition{MinPitch: 7}, ScopeContext{Pitch: 7}, true},
		{"pitch above threshold", TriggerCondition{MinPitch: 7}, ScopeContext{Pitch: 9}, true},
		{"pitch below threshold", TriggerCondition{MinPitch: 7}, ScopeContext{Pitch: 4}, false},
		{"stories at threshold", TriggerCondition{MinStories: 2}, ScopeContext{Stories: 2}, true},
		{"stories below threshold", TriggerCondition{MinStories: 2}, ScopeContext{Stories: 1}, false},
		{"either clause suffices", TriggerCondition{MinPitch: 7, MinStories: 2}, ScopeContext{Pitch: 8, Stories: 1}, true},
		{"neither clause holds", TriggerCondition{MinPitch: 7, MinStories: 2}, ScopeContext{Pitch: 4, Stories: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.trigger.Holds(tt.ctx); got != tt.want {
				t.Errorf("Holds(%+v) = %v, want %v", tt.ctx, got, tt.want)
			}
		})
	}
}

func TestPriority_Rank(t *testing.T) {
	if PriorityCritical.Rank() <= PriorityHigh.Rank() {
		t.Error("critical must outrank high")
	}
	if PriorityHigh.Rank() <= PriorityMedium.Rank() {
		t.Error("high must outrank medium")
	}
	if Priority("bogus").Rank() != 0 {
		t.Error("unknown priority must rank lowest")
	}
}
