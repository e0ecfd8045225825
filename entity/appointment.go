package entity

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"MarketChat/internal/lib/validate"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusPending             AppointmentStatus = "pending"
	StatusConfirmed           AppointmentStatus = "confirmed"
	StatusDeclined            AppointmentStatus = "declined"
	StatusRescheduleRequested AppointmentStatus = "reschedule_requested"
	StatusCompleted           AppointmentStatus = "completed"
	StatusCanceled            AppointmentStatus = "canceled"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDeclined, StatusRescheduleRequested, StatusCompleted, StatusCanceled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition may leave s.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case StatusDeclined, StatusCompleted, StatusCanceled:
		return true
	default:
		return false
	}
}

// SuggestedTime is a counter-proposal awaiting acceptance.
type SuggestedTime struct {
	Date        string    `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Time        string    `json:"time" bson:"time" validate:"required,datetime=15:04"`
	SuggestedAt time.Time `json:"suggestedAt" bson:"suggested_at"`
}

// Appointment is one element of a room's appointment list.
type Appointment struct {
	ID            string            `json:"id" bson:"id"`
	UserID        string            `json:"userId" bson:"user_id"`
	BusinessID    string            `json:"businessId" bson:"business_id"`
	Service       string            `json:"service" bson:"service"`
	CustomerName  string            `json:"customerName" bson:"customer_name"`
	CustomerEmail string            `json:"customerEmail" bson:"customer_email"`
	CustomerPhone string            `json:"customerPhone" bson:"customer_phone"`
	Notes         string            `json:"notes" bson:"notes"`
	PreferredDate string            `json:"preferredDate" bson:"preferred_date"`
	PreferredTime string            `json:"preferredTime" bson:"preferred_time"`
	Status        AppointmentStatus `json:"status" bson:"status"`
	SuggestedTime *SuggestedTime    `json:"suggestedTime,omitempty" bson:"suggested_time,omitempty"`
	CreatedAt     time.Time         `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time         `json:"updatedAt" bson:"updated_at"`
}

type appointmentJSON Appointment

// MarshalJSON also emits the legacy date/time pair.
func (a Appointment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		appointmentJSON
		Date string `json:"date"`
		Time string `json:"time"`
	}{
		appointmentJSON: appointmentJSON(a),
		Date:            a.PreferredDate,
		Time:            a.PreferredTime,
	})
}

// UnmarshalJSON falls back to the legacy date/time pair when the preferred
// slot is absent.
func (a *Appointment) UnmarshalJSON(data []byte) error {
	var raw struct {
		appointmentJSON
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Appointment(raw.appointmentJSON)
	if a.PreferredDate == "" {
		a.PreferredDate = raw.Date
	}
	if a.PreferredTime == "" {
		a.PreferredTime = raw.Time
	}
	return nil
}

// Revision identifies the stored state a change was planned against. Every
// accepted change moves UpdatedAt forward, so an unchanged revision means no
// other writer touched the appointment in between.
type Revision struct {
	Status    AppointmentStatus
	UpdatedAt time.Time
}

func (a Appointment) Revision() Revision {
	return Revision{Status: a.Status, UpdatedAt: a.UpdatedAt}
}

func (r Revision) Matches(a Appointment) bool {
	return a.Status == r.Status && a.UpdatedAt.Equal(r.UpdatedAt)
}

// AppointmentDraft is a booking request made inside a room.
type AppointmentDraft struct {
	Service       string `json:"service" validate:"required,max=200"`
	CustomerName  string `json:"customerName" validate:"required,max=200"`
	CustomerEmail string `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone string `json:"customerPhone" validate:"omitempty,max=40"`
	Notes         string `json:"notes" validate:"max=2000"`
	PreferredDate string `json:"preferredDate" validate:"required,datetime=2006-01-02"`
	PreferredTime string `json:"preferredTime" validate:"required,datetime=15:04"`
	// legacy aliases of PreferredDate/PreferredTime
	Date string `json:"date" validate:"-"`
	Time string `json:"time" validate:"-"`
}

func (d *AppointmentDraft) Bind(_ *http.Request) error {
	d.Service = strings.TrimSpace(d.Service)
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.CustomerEmail = strings.TrimSpace(d.CustomerEmail)
	d.CustomerPhone = strings.TrimSpace(d.CustomerPhone)
	if d.PreferredDate == "" {
		d.PreferredDate = d.Date
	}
	if d.PreferredTime == "" {
		d.PreferredTime = d.Time
	}
	return d.Validate()
}

func (d *AppointmentDraft) Validate() error {
	if err := validate.Struct(d); err != nil {
		return &Error{Kind: KindValidation, Message: err.Error()}
	}
	return nil
}

// NewAppointment builds a pending appointment owned by the room's parties.
func NewAppointment(room *ChatRoom, draft AppointmentDraft, now time.Time) Appointment {
	return Appointment{
		ID:            uuid.NewString(),
		UserID:        room.UserID,
		BusinessID:    room.BusinessID,
		Service:       draft.Service,
		CustomerName:  draft.CustomerName,
		CustomerEmail: draft.CustomerEmail,
		CustomerPhone: draft.CustomerPhone,
		Notes:         draft.Notes,
		PreferredDate: draft.PreferredDate,
		PreferredTime: draft.PreferredTime,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// StatusChange is a request to move an appointment to a new status.
type StatusChange struct {
	Status        AppointmentStatus `json:"status"`
	SuggestedTime *SuggestedTime    `json:"suggestedTime,omitempty"`
	Message       string            `json:"message,omitempty"`
}

func (c *StatusChange) Bind(_ *http.Request) error {
	c.Message = strings.TrimSpace(c.Message)
	return c.Validate()
}

func (c *StatusChange) Validate() error {
	if !c.Status.Valid() {
		return Validation("unknown appointment status %q", c.Status)
	}
	if c.Status == StatusRescheduleRequested {
		if c.SuggestedTime == nil {
			return Validation("suggestedTime is required to request a reschedule")
		}
		if err := validate.Struct(c.SuggestedTime); err != nil {
			return &Error{Kind: KindValidation, Message: err.Error()}
		}
	} else if c.SuggestedTime != nil {
		return Validation("suggestedTime is only accepted with status %q", StatusRescheduleRequested)
	}
	if utf8.RuneCountInString(c.Message) > MaxContentLength {
		return Validation("message exceeds %d characters", MaxContentLength)
	}
	return nil
}

// AppointmentUpdate is a targeted patch applied atomically to one
// appointment element by the storage layer.
type AppointmentUpdate struct {
	Status         AppointmentStatus
	SuggestedTime  *SuggestedTime
	ClearSuggested bool
	PreferredDate  string
	PreferredTime  string
	UpdatedAt      time.Time
}

// Apply mutates a in memory the same way storage applies the patch.
func (u AppointmentUpdate) Apply(a *Appointment) {
	a.Status = u.Status
	a.UpdatedAt = u.UpdatedAt
	if u.SuggestedTime != nil {
		st := *u.SuggestedTime
		a.SuggestedTime = &st
	} else if u.ClearSuggested {
		a.SuggestedTime = nil
	}
	if u.PreferredDate != "" {
		a.PreferredDate = u.PreferredDate
	}
	if u.PreferredTime != "" {
		a.PreferredTime = u.PreferredTime
	}
}
