package models

import "encoding/json"

// InboundEvent is the raw webhook payload posted by Slack. Only the fields the
// pipeline routes on are named; everything else is ignored.
type InboundEvent struct {
	Type      string      `json:"type"`
	Challenge string      `json:"challenge,omitempty"`
	Event     ChatEvent   `json:"event,omitempty"`
	EventID   string      `json:"event_id,omitempty"`
	EventTime json.Number `json:"event_time,omitempty"`
}

// ChatEvent is the nested message event. BotID is set when the message was
// produced by a bot account; those events are dropped to avoid reply loops.
type ChatEvent struct {
	Type    string `json:"type,omitempty"`
	Channel string `json:"channel,omitempty"`
	User    string `json:"user,omitempty"`
	Text    string `json:"text,omitempty"`
	TS      string `json:"ts,omitempty"`
	EventTS string `json:"event_ts,omitempty"`
	BotID   string `json:"bot_id,omitempty"`
}

// WorkItem is the queue message schema shared by receiver and worker. EventID
// doubles as the queue deduplication key.
type WorkItem struct {
	Event     ChatEvent `json:"event"`
	EventID   string    `json:"event_id"`
	EventTime string    `json:"event_time"`
}
