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

// ListRooms returns the caller's inbox. The optional party query must name
// the caller itself.
func ListRooms(log *slog.Logger, handler Core) http.HandlerFunc {
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
		if q := r.URL.Query().Get("party"); q != "" && q != party.ID {
			errors.Fail(w, r, logger, "list rooms", entity.Forbidden("cannot list rooms of another party"))
			return
		}

		rooms, err := handler.ListRooms(r.Context(), party)
		if err != nil {
			errors.Fail(w, r, logger, "list rooms", err)
			return
		}

		logger.Debug("rooms listed", slog.Int("count", len(rooms)))
		render.JSON(w, r, response.Ok(rooms))
	}
}
