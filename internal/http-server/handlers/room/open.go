package room

import (
	"MarketChat/entity"
	"MarketChat/internal/http-server/handlers/errors"
	"MarketChat/internal/lib/api/cont"
	"MarketChat/internal/lib/api/response"
	"MarketChat/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// OpenRoom gets or creates the room between the caller and the party named
// in the body: a user supplies businessId, a business supplies userId.
func OpenRoom(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.room")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
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

		var req entity.RoomRequest
		if err := render.Bind(r, &req); err != nil {
			errors.Fail(w, r, logger, "decode room request", response.BindError(err))
			return
		}

		counterparty := req.BusinessID
		if party.Type == entity.SenderBusiness {
			counterparty = req.UserID
		}
		if counterparty == "" {
			errors.Fail(w, r, logger, "open room", entity.Validation("counterparty id is required"))
			return
		}

		room, err := handler.OpenRoom(r.Context(), party, counterparty)
		if err != nil {
			errors.Fail(w, r, logger, "open room", err)
			return
		}

		logger.Debug("room opened", slog.String("room_id", room.ID))
		render.JSON(w, r, response.Ok(room))
	}
}
