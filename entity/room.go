package entity

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

type RoomStatus string

const (
	RoomActive   RoomStatus = "active"
	RoomArchived RoomStatus = "archived"
)

func (s RoomStatus) Valid() bool {
	return s == RoomActive || s == RoomArchived
}

// ChatRoom is the unit of consistency for one (user, business) pair.
type ChatRoom struct {
	ID           string        `json:"id" bson:"_id"`
	UserID       string        `json:"userId" bson:"user_id"`
	BusinessID   string        `json:"businessId" bson:"business_id"`
	Status       RoomStatus    `json:"status" bson:"status"`
	Messages     []Message     `json:"messages" bson:"messages"`
	Appointments []Appointment `json:"appointments" bson:"appointments"`
	LastActivity time.Time     `json:"lastActivity" bson:"last_activity"`
	CreatedAt    time.Time     `json:"createdAt" bson:"created_at"`
}

func NewChatRoom(userID, businessID string, now time.Time) *ChatRoom {
	return &ChatRoom{
		ID:           uuid.NewString(),
		UserID:       userID,
		BusinessID:   businessID,
		Status:       RoomActive,
		Messages:     []Message{},
		Appointments: []Appointment{},
		LastActivity: now,
		CreatedAt:    now,
	}
}

// Normalize replaces absent collections with empty ones.
func (r *ChatRoom) Normalize() {
	if r.Messages == nil {
		r.Messages = []Message{}
	}
	if r.Appointments == nil {
		r.Appointments = []Appointment{}
	}
	if r.Status == "" {
		r.Status = RoomActive
	}
}

// HasParty reports whether p is the room's user or business, in the role p claims.
func (r *ChatRoom) HasParty(p Party) bool {
	switch p.Type {
	case SenderUser:
		return p.ID == r.UserID
	case SenderBusiness:
		return p.ID == r.BusinessID
	default:
		return false
	}
}

// Counterparty returns the other side of the room relative to p.
func (r *ChatRoom) Counterparty(p Party) Party {
	switch p.Type {
	case SenderUser:
		return Party{ID: r.BusinessID, Type: SenderBusiness}
	default:
		return Party{ID: r.UserID, Type: SenderUser}
	}
}

// PartyFor returns the room's party of the given type.
func (r *ChatRoom) PartyFor(t SenderType) Party {
	if t == SenderBusiness {
		return Party{ID: r.BusinessID, Type: SenderBusiness}
	}
	return Party{ID: r.UserID, Type: SenderUser}
}

func (r *ChatRoom) UnreadCountFor(reader SenderType) int {
	return CountUnread(r.Messages, reader)
}

func (r *ChatRoom) Appointment(id string) (*Appointment, bool) {
	for i := range r.Appointments {
		if r.Appointments[i].ID == id {
			return &r.Appointments[i], true
		}
	}
	return nil, false
}

// RoomSummary is an inbox row annotated for one party.
type RoomSummary struct {
	ID               string     `json:"id" bson:"_id"`
	UserID           string     `json:"userId" bson:"user_id"`
	BusinessID       string     `json:"businessId" bson:"business_id"`
	Status           RoomStatus `json:"status" bson:"status"`
	LastActivity     time.Time  `json:"lastActivity" bson:"last_activity"`
	LastMessage      *Message   `json:"lastMessage,omitempty" bson:"last_message,omitempty"`
	UnreadCount      int        `json:"unreadCount" bson:"unread_count"`
	OpenAppointments int        `json:"openAppointments" bson:"open_appointments"`
}

// Summary builds the inbox row of r as seen by reader.
func (r *ChatRoom) Summary(reader SenderType) RoomSummary {
	s := RoomSummary{
		ID:           r.ID,
		UserID:       r.UserID,
		BusinessID:   r.BusinessID,
		Status:       r.Status,
		LastActivity: r.LastActivity,
		UnreadCount:  r.UnreadCountFor(reader),
	}
	if n := len(r.Messages); n > 0 {
		last := r.Messages[n-1]
		s.LastMessage = &last
	}
	for _, a := range r.Appointments {
		if !a.Status.Terminal() {
			s.OpenAppointments++
		}
	}
	return s
}

// RoomRequest opens a room with a counter-party.
type RoomRequest struct {
	UserID     string `json:"userId"`
	BusinessID string `json:"businessId"`
}

func (r *RoomRequest) Bind(_ *http.Request) error {
	return nil
}

type RoomStatusRequest struct {
	Status RoomStatus `json:"status"`
}

func (r *RoomStatusRequest) Bind(_ *http.Request) error {
	if !r.Status.Valid() {
		return Validation("unknown room status %q", r.Status)
	}
	return nil
}

// BusinessSettings holds the per-business switches read by the chat core.
type BusinessSettings struct {
	BusinessID string    `json:"businessId" bson:"business_id"`
	AIEnabled  bool      `json:"aiEnabled" bson:"ai_enabled"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updated_at"`
}
