package entity

import "time"

const (
	EventMessage           = "message"
	EventAppointmentUpdate = "appointment_update"
	EventReadReceipt       = "read_receipt"
	EventRoomUpdate        = "room_update"
)

// Event is the real-time notification pushed to a party channel. Data
// mirrors the persisted entity.
type Event struct {
	Type   string      `json:"type"`
	RoomID string      `json:"roomId"`
	Data   interface{} `json:"data"`
	SentAt time.Time   `json:"sentAt"`
}

// ReadReceipt tells the sender that the reader caught up.
type ReadReceipt struct {
	Reader          Party     `json:"reader"`
	MessagesUpdated int       `json:"messagesUpdated"`
	ReadAt          time.Time `json:"readAt"`
}
