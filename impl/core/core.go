package core

import (
	"MarketChat/entity"
	"MarketChat/internal/lib/sl"
	"context"
	"log/slog"
	"sync"
	"time"
)

// Repository exposes the atomic single-document primitives the chat core
// is built on. No method rewrites a whole room.
type Repository interface {
	FindRoomByParties(ctx context.Context, userID, businessID string) (*entity.ChatRoom, error)
	CreateRoomIfAbsent(ctx context.Context, room *entity.ChatRoom) (*entity.ChatRoom, error)
	GetRoom(ctx context.Context, roomID string) (*entity.ChatRoom, error)
	ListRooms(ctx context.Context, party entity.Party) ([]entity.RoomSummary, error)

	AppendMessage(ctx context.Context, roomID string, msg entity.Message) error
	AppendAppointment(ctx context.Context, roomID string, appt entity.Appointment) error
	UpdateAppointment(ctx context.Context, roomID, appointmentID string, expect entity.Revision, update entity.AppointmentUpdate) (*entity.Appointment, error)
	MarkRead(ctx context.Context, roomID string, sender entity.SenderType, at time.Time) (int, error)
	SetRoomStatus(ctx context.Context, roomID string, status entity.RoomStatus, at time.Time) error

	GetBusinessSettings(ctx context.Context, businessID string) (*entity.BusinessSettings, error)
	SetAIEnabled(ctx context.Context, businessID string, enabled bool) error
}

// Publisher delivers a serialized event to a party channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Responder drafts a business reply from the conversation so far.
type Responder interface {
	Reply(ctx context.Context, history []entity.Message) (string, error)
}

type AuthService interface {
	Authenticate(token string) (entity.Party, error)
}

type Core struct {
	repo          Repository
	pub           Publisher
	responder     Responder
	authService   AuthService
	fanoutTimeout time.Duration
	replyTimeout  time.Duration
	historyLimit  int
	now           func() time.Time
	bg            sync.WaitGroup
	log           *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		fanoutTimeout: 5 * time.Second,
		replyTimeout:  30 * time.Second,
		historyLimit:  20,
		now:           time.Now,
		log:           log.With(sl.Module("core")),
	}
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetPublisher(pub Publisher) {
	c.pub = pub
}

func (c *Core) SetResponder(responder Responder) {
	c.responder = responder
}

func (c *Core) SetAuthService(auth AuthService) {
	c.authService = auth
}

func (c *Core) SetTimeouts(fanout, reply time.Duration) {
	if fanout > 0 {
		c.fanoutTimeout = fanout
	}
	if reply > 0 {
		c.replyTimeout = reply
	}
}

func (c *Core) SetHistoryLimit(limit int) {
	if limit > 0 {
		c.historyLimit = limit
	}
}

// Wait blocks until background fan-out and auto replies have finished.
func (c *Core) Wait() {
	c.bg.Wait()
}

func (c *Core) Authenticate(token string) (entity.Party, error) {
	if c.authService == nil {
		return entity.Party{}, entity.Unauthenticated("authentication not enabled")
	}
	return c.authService.Authenticate(token)
}

// background runs fn detached from the request, tracked by Wait.
func (c *Core) background(timeout time.Duration, fn func(ctx context.Context)) {
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		fn(ctx)
	}()
}
