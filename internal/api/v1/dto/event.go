package dto

// PubSubPushRequest is the request body for a Pub/Sub push delivery.
type PubSubPushRequest struct {
	Message      PubSubMessage `json:"message"`
	Subscription string        `json:"subscription"`
}

// PubSubMessage is the actual message from Pub/Sub.
type PubSubMessage struct {
	Data       string            `json:"data"` // Base64-encoded
	MessageID  string            `json:"messageId"`
	Attributes map[string]string `json:"attributes"`
}

// EventType returns the event kind carried in the message attributes.
func (m PubSubMessage) EventType() string {
	return m.Attributes["eventType"]
}
