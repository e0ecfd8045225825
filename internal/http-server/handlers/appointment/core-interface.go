package appointment

import (
	"MarketChat/entity"
	"context"
)

type Core interface {
	CreateAppointment(ctx context.Context, roomID string, caller entity.Party, draft entity.AppointmentDraft) (*entity.Appointment, error)
	ChangeAppointmentStatus(ctx context.Context, roomID, appointmentID string, caller entity.Party, change entity.StatusChange) (*entity.Appointment, error)
}
