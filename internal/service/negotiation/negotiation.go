// Package negotiation validates appointment status transitions and builds
// the targeted update that storage applies atomically.
package negotiation

import (
	"fmt"
	"time"

	"MarketChat/entity"
)

var transitions = map[entity.AppointmentStatus][]entity.AppointmentStatus{
	entity.StatusPending: {
		entity.StatusConfirmed,
		entity.StatusDeclined,
		entity.StatusRescheduleRequested,
		entity.StatusCanceled,
	},
	entity.StatusRescheduleRequested: {
		entity.StatusConfirmed,
		entity.StatusDeclined,
		entity.StatusRescheduleRequested,
		entity.StatusCanceled,
	},
	entity.StatusConfirmed: {
		entity.StatusCompleted,
		entity.StatusCanceled,
	},
}

// Allowed reports whether the machine has an edge from -> to.
func Allowed(from, to entity.AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Permitted reports whether a party of type actor may move an appointment to status to.
func Permitted(actor entity.SenderType, to entity.AppointmentStatus) bool {
	switch actor {
	case entity.SenderBusiness:
		return to != entity.StatusPending
	case entity.SenderUser:
		switch to {
		case entity.StatusRescheduleRequested, entity.StatusCanceled:
			return true
		default:
			return false
		}
	default:
		return false
	}
}

// Plan checks the requested change against the current appointment and
// returns the patch to apply. The patch is only valid while the stored
// appointment is still at appt.Revision().
func Plan(appt entity.Appointment, actor entity.Party, change entity.StatusChange, now time.Time) (entity.AppointmentUpdate, error) {
	from, to := appt.Status, change.Status
	if !Allowed(from, to) {
		return entity.AppointmentUpdate{}, &entity.InvalidTransitionError{From: from, To: to}
	}
	if !Permitted(actor.Type, to) {
		return entity.AppointmentUpdate{}, entity.Forbidden("%s party may not set appointment status %q", actor.Type, to)
	}

	now = stamp(appt, now)
	update := entity.AppointmentUpdate{Status: to, UpdatedAt: now}
	switch to {
	case entity.StatusRescheduleRequested:
		// a new counter-proposal replaces any earlier one
		update.SuggestedTime = &entity.SuggestedTime{
			Date:        change.SuggestedTime.Date,
			Time:        change.SuggestedTime.Time,
			SuggestedAt: now,
		}
	case entity.StatusConfirmed:
		if from == entity.StatusRescheduleRequested && appt.SuggestedTime != nil {
			update.PreferredDate = appt.SuggestedTime.Date
			update.PreferredTime = appt.SuggestedTime.Time
		}
		update.ClearSuggested = true
	default:
		update.ClearSuggested = true
	}
	return update, nil
}

// Summary is the text of the system message posted after an outcome.
func Summary(appt entity.Appointment) string {
	switch appt.Status {
	case entity.StatusConfirmed:
		return fmt.Sprintf("Appointment for %s on %s at %s is confirmed.", appt.Service, appt.PreferredDate, appt.PreferredTime)
	case entity.StatusDeclined:
		return fmt.Sprintf("Appointment request for %s on %s at %s was declined.", appt.Service, appt.PreferredDate, appt.PreferredTime)
	default:
		return fmt.Sprintf("Appointment for %s is now %s.", appt.Service, appt.Status)
	}
}

// Announces reports whether a transition into status posts a system message.
func Announces(status entity.AppointmentStatus) bool {
	return status == entity.StatusConfirmed || status == entity.StatusDeclined
}

// stamp returns the update time for a change to appt: now at storage
// precision, moved past appt.UpdatedAt so consecutive revisions never compare
// equal.
func stamp(appt entity.Appointment, now time.Time) time.Time {
	at := now.Truncate(time.Millisecond)
	last := appt.UpdatedAt.Truncate(time.Millisecond)
	if !at.After(last) {
		at = last.Add(time.Millisecond)
	}
	return at
}
