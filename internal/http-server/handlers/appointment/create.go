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

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.appointment")

		roomID := chi.URLParam(r, "roomId")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("room_id", roomID),
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

		var draft entity.AppointmentDraft
		if err := render.Bind(r, &draft); err != nil {
			errors.Fail(w, r, logger, "decode appointment", response.BindError(err))
			return
		}

		appt, err := handler.CreateAppointment(r.Context(), roomID, party, draft)
		if err != nil {
			errors.Fail(w, r, logger, "create appointment", err)
			return
		}

		logger.Debug("appointment created", slog.String("appointment_id", appt.ID))
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(appt))
	}
}
