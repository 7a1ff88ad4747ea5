package realtime

import "encoding/json"

// Actions carried by notification envelopes.
const (
	ActionNew       = "new"
	ActionBroadcast = "broadcast"
	ActionRead      = "read"
	ActionDelete    = "delete"
)

// Envelope is the JSON frame written to websocket clients.
type Envelope struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   any    `json:"data,omitempty"`
}

// NotificationEnvelope marshals a notification frame for the given action.
func NotificationEnvelope(action string, data any) ([]byte, error) {
	return json.Marshal(Envelope{
		Type:   "notification",
		Action: action,
		Data:   data,
	})
}
