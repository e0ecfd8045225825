package room

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
		mod := sl.Module("http.handlers.room")

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

		var req entity.RoomStatusRequest
		if err := render.Bind(r, &req); err != nil {
			errors.Fail(w, r, logger, "decode room status", response.BindError(err))
			return
		}

		room, err := handler.SetRoomStatus(r.Context(), roomID, party, req.Status)
		if err != nil {
			errors.Fail(w, r, logger, "set room status", err)
			return
		}

		logger.Debug("room status updated", slog.String("status", string(room.Status)))
		render.JSON(w, r, response.Ok(room))
	}
}
