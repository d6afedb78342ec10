package domain

import "time"

// Message is a raw accountability message delivered by the chat collaborator.
type Message struct {
	ID            string    `json:"id"`
	SenderID      string    `json:"sender_id"`
	Channel       string    `json:"channel"`
	Text          string    `json:"text"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	ReceivedAt    time.Time `json:"received_at"`
}
