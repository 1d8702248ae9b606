package events

import (
	"encoding/json"
	"time"
)

// Event types published over the SSE stream.
const (
	TypeItemCreated    = "item_created"
	TypeItemDeleted    = "item_deleted"
	TypeItemStatus     = "item_status"
	TypeSourcesUpdated = "sources_updated"
	TypeSourceDeleted  = "source_deleted"
	TypeResearchDone   = "research_done"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
