package appointment

import (
	"MarketChat/entity"
	"MarketChat/internal/http-server/handlers/errors"
	"MarketChat/internal/lib/api/cont"
	"MarketChat/internal/lib/api/response"
	"MarketChat/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func SetStatus(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.appointment")

		roomID := chi.URLParam(r, "roomId")
		appointmentID := chi.URLParam(r, "appointmentId")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("room_id", roomID),
			slog.String("appointment_id", appointmentID),
		)

		if handler == nil {
			errors.Unavailable(w, r, logger, "chat service")
			return
		}

		party, ok := cont.GetParty(r.Context())
		if !ok {
			errors.Unauthorized(w, r)
			return
		}

		var change entity.StatusChange
		if err := render.Bind(r, &change); err != nil {
			errors.Fail(w, r, logger, "decode status change", response.BindError(err))
			return
		}

		appt, err := handler.ChangeAppointmentStatus(r.Context(), roomID, appointmentID, party, change)
		if err != nil {
			errors.Fail(w, r, logger, "change appointment status", err)
			return
		}

		logger.Debug("appointment status changed", slog.String("status", string(appt.Status)))
		render.JSON(w, r, response.Ok(appt))
	}
}
