package agent

import (
	"encoding/json"
	"strings"
)

// Action kinds the planner may produce. Values match what the plan prompt
// asks the model for.
const (
	ActionWait       = "wait"
	ActionRoam       = "roam"
	ActionRespond    = "chat"
	ActionSend       = "send"
	ActionDirectSend = "dm_send"
	ActionRead       = "read"
)

// PendingAction is one queued decision, either planned by the model or
// enqueued directly by ingestion (fast-path response). Consumed exactly once
// by the dispatcher.
type PendingAction struct {
	Action        string  `json:"action"`
	TargetServer  string  `json:"target_server,omitempty"`
	TargetChannel string  `json:"target_channel,omitempty"`
	TargetUser    string  `json:"target_user,omitempty"`
	Message       string  `json:"message,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	Confidence    float64 `json:"confidence"`

	// Source is set only on fast-path respond actions.
	Source *Event `json:"-"`
}

// respondAction wraps an inbound event for the fast path; interest is
// re-evaluated at dispatch time.
func respondAction(ev Event) PendingAction {
	return PendingAction{
		Action:        ActionRespond,
		TargetChannel: ev.ChannelID,
		Confidence:    1.0,
		Source:        &ev,
	}
}

// rawPlan tolerates models that emit IDs as numbers instead of strings.
type rawPlan struct {
	Action        string          `json:"action"`
	TargetServer  json.RawMessage `json:"target_server"`
	TargetChannel json.RawMessage `json:"target_channel"`
	TargetUser    json.RawMessage `json:"target_user"`
	Message       string          `json:"message"`
	Reason        string          `json:"reason"`
	Confidence    float64         `json:"confidence"`
}

func (p rawPlan) toAction() PendingAction {
	return PendingAction{
		Action:        strings.ToLower(strings.TrimSpace(p.Action)),
		TargetServer:  rawID(p.TargetServer),
		TargetChannel: rawID(p.TargetChannel),
		TargetUser:    rawID(p.TargetUser),
		Message:       p.Message,
		Reason:        p.Reason,
		Confidence:    p.Confidence,
	}
}

// rawID renders a JSON string or number value as a bare string.
func rawID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	return strings.Trim(s, `"`)
}
