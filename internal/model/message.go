package model

import "time"

// Message is a direct message between two users, optionally tied to a
// specific horse (the usual flow: a buyer contacting a horse's owner).
type Message struct {
	ID          uint64    // messages.id
	SenderID    uint64    // messages.sender_id
	ReceiverID  uint64    // messages.receiver_id
	MicrochipID *string   // messages.microchip_id (nullable)
	Subject     string    // messages.subject
	Content     string    // messages.content
	IsRead      bool      // messages.is_read
	Timestamp   time.Time // messages.timestamp
}
