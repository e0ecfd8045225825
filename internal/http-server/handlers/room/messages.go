package room

import (
	"MarketChat/entity"
	"MarketChat/internal/http-server/handlers/errors"
	"MarketChat/internal/lib/api/cont"
	"MarketChat/internal/lib/api/response"
	"MarketChat/internal/lib/sl"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func GetMessages(log *slog.Logger, handler Core) http.HandlerFunc {
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

		limit, err := queryInt(r, "limit", defaultPageSize)
		if err != nil {
			errors.Fail(w, r, logger, "parse limit", err)
			return
		}
		if limit <= 0 || limit > maxPageSize {
			limit = maxPageSize
		}
		offset, err := queryInt(r, "offset", 0)
		if err != nil {
			errors.Fail(w, r, logger, "parse offset", err)
			return
		}

		messages, err := handler.GetMessages(r.Context(), roomID, party, limit, offset)
		if err != nil {
			errors.Fail(w, r, logger, "get messages", err)
			return
		}

		logger.Debug("messages listed", slog.Int("count", len(messages)))
		render.JSON(w, r, response.Ok(messages))
	}
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, entity.Validation("%s must be a non-negative integer", key)
	}
	return n, nil
}
