package business

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

type AISetting struct {
	BusinessID string `json:"businessId"`
	Enabled    *bool  `json:"enabled"`
}

func (s *AISetting) Bind(_ *http.Request) error {
	if s.Enabled == nil {
		return entity.Validation("enabled is required")
	}
	return nil
}

func GetAI(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.business")

		businessID := chi.URLParam(r, "businessId")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("business_id", businessID),
		)

		if handler == nil {
			errors.Unavailable(w, r, logger, "chat service")
			return
		}

		if _, ok := cont.GetParty(r.Context()); !ok {
			errors.Unauthorized(w, r)
			return
		}

		enabled, err := handler.IsAIEnabled(r.Context(), businessID)
		if err != nil {
			errors.Fail(w, r, logger, "read ai setting", err)
			return
		}

		render.JSON(w, r, response.Ok(AISetting{BusinessID: businessID, Enabled: &enabled}))
	}
}

func SetAI(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.business")

		businessID := chi.URLParam(r, "businessId")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("business_id", businessID),
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

		var req AISetting
		if err := render.Bind(r, &req); err != nil {
			errors.Fail(w, r, logger, "decode ai setting", response.BindError(err))
			return
		}

		if err := handler.SetAIEnabled(r.Context(), party, businessID, *req.Enabled); err != nil {
			errors.Fail(w, r, logger, "set ai setting", err)
			return
		}

		logger.Info("ai setting changed", slog.Bool("enabled", *req.Enabled))
		render.JSON(w, r, response.Ok(AISetting{BusinessID: businessID, Enabled: req.Enabled}))
	}
}
