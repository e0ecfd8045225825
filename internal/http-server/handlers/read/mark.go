package read

import (
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

type Result struct {
	MessagesUpdated int `json:"messagesUpdated"`
}

// MarkRead flags the counter-party's messages as read by the caller.
func MarkRead(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.read")

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

		n, err := handler.MarkAllRead(r.Context(), roomID, party)
		if err != nil {
			errors.Fail(w, r, logger, "mark read", err)
			return
		}

		render.JSON(w, r, response.Ok(Result{MessagesUpdated: n}))
	}
}
