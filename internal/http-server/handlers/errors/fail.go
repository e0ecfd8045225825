package errors

import (
	"MarketChat/internal/lib/api/response"
	"MarketChat/internal/lib/sl"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

// Fail writes err with the status its kind maps to. Server-side failures
// are logged at error level, client mistakes at debug.
func Fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	if response.IsClientError(err) {
		logger.Debug(msg, sl.Err(err))
	} else {
		logger.Error(msg, sl.Err(err))
	}
	render.Status(r, response.Status(err))
	render.JSON(w, r, response.Fail(err))
}

// Unauthorized is written when a route behind the authenticate middleware
// finds no party in the request context.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error("Unauthorized"))
}

func Unavailable(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service string) {
	logger.Error(service + " not available")
	render.Status(r, http.StatusServiceUnavailable)
	render.JSON(w, r, response.Error(service+" not available"))
}
