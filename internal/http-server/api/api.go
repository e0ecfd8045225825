package api

import (
	"MarketChat/internal/config"
	"MarketChat/internal/http-server/handlers/appointment"
	"MarketChat/internal/http-server/handlers/business"
	"MarketChat/internal/http-server/handlers/errors"
	"MarketChat/internal/http-server/handlers/health"
	"MarketChat/internal/http-server/handlers/message"
	"MarketChat/internal/http-server/handlers/read"
	"MarketChat/internal/http-server/handlers/room"
	"MarketChat/internal/http-server/middleware/authenticate"
	"MarketChat/internal/http-server/middleware/metrics"
	"MarketChat/internal/http-server/middleware/timeout"
	"MarketChat/internal/lib/sl"
	"MarketChat/internal/ws"
	"context"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
	"net"
	"net/http"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	room.Core
	message.Core
	appointment.Core
	read.Core
	business.Core
}

// New builds the server. hub may be nil, in which case /ws is not routed.
func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub, checks map[string]health.Pinger) *Server {
	server := &Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  NewRouter(conf, log, handler, hub, checks),
		ErrorLog: httpLog,
	}
	return server
}

func NewRouter(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub, checks map[string]health.Pinger) http.Handler {
	router := chi.NewRouter()
	router.Use(metrics.New)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/health", health.Check(log, checks))
	if hub != nil {
		router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWs(hub, handler, log, w, r)
		})
	}

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(timeout.Timeout(conf.Listen.Timeout))
		v1.Use(render.SetContentType(render.ContentTypeJSON))
		v1.Use(authenticate.New(log, handler))

		v1.Route("/rooms", func(r chi.Router) {
			r.Get("/", room.ListRooms(log, handler))
			r.Post("/", room.OpenRoom(log, handler))
			r.Route("/{roomId}", func(r chi.Router) {
				r.Get("/", room.GetRoom(log, handler))
				r.Put("/status", room.SetStatus(log, handler))
				r.Put("/read", read.MarkRead(log, handler))
				r.Get("/messages", room.GetMessages(log, handler))
				r.Post("/messages", message.Send(log, handler))
				r.Post("/appointments", appointment.Create(log, handler))
				r.Put("/appointments/{appointmentId}/status", appointment.SetStatus(log, handler))
			})
		})
		v1.Route("/businesses/{businessId}", func(r chi.Router) {
			r.Get("/ai", business.GetAI(log, handler))
			r.Put("/ai", business.SetAI(log, handler))
		})
	})

	return router
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	s.log.Info("starting api server", slog.String("address", serverAddress))

	err = s.httpServer.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
