package message

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

// Send appends a message authored by the authenticated party.
func Send(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.message")

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

		var draft entity.MessageDraft
		if err := render.Bind(r, &draft); err != nil {
			errors.Fail(w, r, logger, "decode message", response.BindError(err))
			return
		}

		msg, err := handler.AppendMessage(r.Context(), roomID, party, draft)
		if err != nil {
			errors.Fail(w, r, logger, "append message", err)
			return
		}

		logger.Debug("message appended",
			slog.String("message_id", msg.ID),
			slog.String("sender_type", string(msg.SenderType)),
		)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(msg))
	}
}
