package core

import (
	"MarketChat/entity"
	"MarketChat/internal/lib/sl"
	"MarketChat/internal/metrics"
	"MarketChat/internal/service/negotiation"
	"context"
	"log/slog"
)

// CreateAppointment appends a pending appointment built from the draft.
func (c *Core) CreateAppointment(ctx context.Context, roomID string, caller entity.Party, draft entity.AppointmentDraft) (*entity.Appointment, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	room, err := c.roomFor(ctx, roomID, caller)
	if err != nil {
		return nil, err
	}

	appt := entity.NewAppointment(room, draft, c.now())
	if err = c.repo.AppendAppointment(ctx, room.ID, appt); err != nil {
		return nil, err
	}
	metrics.AppointmentTransitions.WithLabelValues(string(entity.StatusPending), "created").Inc()

	c.publish(room.Counterparty(caller), entity.EventAppointmentUpdate, room.ID, appt)
	return &appt, nil
}

// ChangeAppointmentStatus moves one appointment through the negotiation
// machine. The write only lands if the appointment is still at the revision
// the plan was made against. A concurrent change is reported, never
// re-planned: the actor decided on a state that no longer exists.
func (c *Core) ChangeAppointmentStatus(ctx context.Context, roomID, appointmentID string, caller entity.Party, change entity.StatusChange) (*entity.Appointment, error) {
	if err := change.Validate(); err != nil {
		return nil, err
	}
	log := c.log.With(
		slog.String("room_id", roomID),
		slog.String("appointment_id", appointmentID),
		slog.String("actor", string(caller.Type)),
		slog.String("status", string(change.Status)),
	)

	room, err := c.roomFor(ctx, roomID, caller)
	if err != nil {
		return nil, err
	}
	current, ok := room.Appointment(appointmentID)
	if !ok {
		return nil, entity.NotFound("appointment %s not found in room %s", appointmentID, roomID)
	}

	update, err := negotiation.Plan(*current, caller, change, c.now())
	if err != nil {
		metrics.AppointmentTransitions.WithLabelValues(string(change.Status), "rejected").Inc()
		return nil, err
	}

	updated, err := c.repo.UpdateAppointment(ctx, roomID, appointmentID, current.Revision(), update)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		metrics.AppointmentTransitions.WithLabelValues(string(change.Status), "conflict").Inc()
		log.Info("appointment changed concurrently", slog.String("planned_from", string(current.Status)))
		return nil, &entity.InvalidTransitionError{From: current.Status, To: change.Status, Stale: true}
	}
	metrics.AppointmentTransitions.WithLabelValues(string(updated.Status), "applied").Inc()
	log.Debug("appointment status changed")

	c.publish(room.Counterparty(caller), entity.EventAppointmentUpdate, roomID, updated)

	// Chat entries are best effort: the transition has already been stored.
	if negotiation.Announces(updated.Status) {
		draft := entity.MessageDraft{Content: negotiation.Summary(*updated)}
		if _, err := c.appendAs(ctx, room, caller, draft, false, true); err != nil {
			log.Warn("post appointment summary", sl.Err(err))
		}
	}
	if change.Message != "" {
		if _, err := c.appendAs(ctx, room, caller, entity.MessageDraft{Content: change.Message}, false, false); err != nil {
			log.Warn("post status change note", sl.Err(err))
		}
	}
	return updated, nil
}
