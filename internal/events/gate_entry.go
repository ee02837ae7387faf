package events

import "time"

const GateEntryTopic = "hostel.gate.entry.v1"

type GateEntryRecordedEvent struct {
	EventType string    `json:"event_type"`
	OutpassID string    `json:"outpass_id"`
	PassCode  string    `json:"pass_code"`
	GateName  string    `json:"gate_name"`
	ScannedAt time.Time `json:"scanned_at"`
}
