package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"MarketChat/entity"
	"MarketChat/internal/database/memstore"
	"MarketChat/internal/service/negotiation"
)

var (
	user     = entity.Party{ID: "u1", Type: entity.SenderUser}
	business = entity.Party{ID: "b1", Type: entity.SenderBusiness}
	stranger = entity.Party{ID: "u2", Type: entity.SenderUser}
)

type published struct {
	channel string
	event   entity.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	var ev entity.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{channel: channel, event: ev})
	return nil
}

func (p *recordingPublisher) ofType(t string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, e := range p.events {
		if e.event.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, []byte) error {
	return errors.New("broker down")
}

type fakeResponder struct {
	mu      sync.Mutex
	calls   int
	history []entity.Message
}

func (r *fakeResponder) Reply(_ context.Context, history []entity.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.history = history
	return "Thanks, we will get back to you shortly.", nil
}

type verboseResponder struct{}

func (verboseResponder) Reply(context.Context, []entity.Message) (string, error) {
	return strings.Repeat("é", entity.MaxContentLength+100), nil
}

// racingStore lets another party's write land between the core reading an
// appointment and its guarded update.
type racingStore struct {
	*memstore.Store
	once      sync.Once
	interfere func()
}

func (s *racingStore) UpdateAppointment(ctx context.Context, roomID, appointmentID string, expect entity.Revision, update entity.AppointmentUpdate) (*entity.Appointment, error) {
	s.once.Do(s.interfere)
	return s.Store.UpdateAppointment(ctx, roomID, appointmentID, expect, update)
}

func newCore(t *testing.T) (*Core, *memstore.Store, *recordingPublisher) {
	t.Helper()
	store := memstore.New()
	pub := &recordingPublisher{}
	c := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.SetRepository(store)
	c.SetPublisher(pub)
	return c, store, pub
}

func openRoom(t *testing.T, c *Core) *entity.ChatRoom {
	t.Helper()
	room, err := c.GetOrCreateRoom(context.Background(), user.ID, business.ID)
	if err != nil {
		t.Fatal(err)
	}
	return room
}

func validDraft() entity.AppointmentDraft {
	return entity.AppointmentDraft{
		Service:       "Haircut",
		CustomerName:  "Sam",
		PreferredDate: "2025-05-30",
		PreferredTime: "15:00",
	}
}

func TestGetOrCreateRoomIsIdempotent(t *testing.T) {
	c, _, _ := newCore(t)
	first := openRoom(t, c)
	second := openRoom(t, c)
	if first.ID != second.ID {
		t.Fatalf("room ids differ: %s != %s", first.ID, second.ID)
	}
	if first.Messages == nil || first.Appointments == nil {
		t.Fatal("new room must start with empty collections")
	}

	if _, err := c.GetOrCreateRoom(context.Background(), "bad id!", business.ID); !entity.IsKind(err, entity.KindValidation) {
		t.Fatalf("malformed id: got %v", err)
	}
}

func TestConcurrentGetOrCreateRoom(t *testing.T) {
	c, _, _ := newCore(t)
	ids := make(chan string, 16)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			room, err := c.GetOrCreateRoom(context.Background(), user.ID, business.ID)
			if err != nil {
				t.Error(err)
				return
			}
			ids <- room.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Fatalf("expected one room, got %d", len(seen))
	}
}

func TestReadReceiptClearsUnread(t *testing.T) {
	c, _, pub := newCore(t)
	ctx := context.Background()
	room := openRoom(t, c)

	if _, err := c.AppendMessage(ctx, room.ID, user, entity.MessageDraft{Content: "Hi"}); err != nil {
		t.Fatal(err)
	}
	got, _ := c.GetRoom(ctx, room.ID, business)
	if n := c.UnreadCountFor(got, entity.SenderBusiness); n != 1 {
		t.Fatalf("unread before = %d, want 1", n)
	}

	n, err := c.MarkAllRead(ctx, room.ID, business)
	if err != nil || n != 1 {
		t.Fatalf("MarkAllRead = %d, %v", n, err)
	}
	got, _ = c.GetRoom(ctx, room.ID, business)
	if n := c.UnreadCountFor(got, entity.SenderBusiness); n != 0 {
		t.Fatalf("unread after = %d, want 0", n)
	}

	n, err = c.MarkAllRead(ctx, room.ID, business)
	if err != nil || n != 0 {
		t.Fatalf("second MarkAllRead = %d, %v", n, err)
	}

	c.Wait()
	receipts := pub.ofType(entity.EventReadReceipt)
	if len(receipts) != 1 || receipts[0].channel != "user_u1" {
		t.Fatalf("read receipts = %+v", receipts)
	}
	messages := pub.ofType(entity.EventMessage)
	if len(messages) != 1 || messages[0].channel != "business_b1" {
		t.Fatalf("message events = %+v", messages)
	}
}

func TestMarkAllReadLeavesOwnMessages(t *testing.T) {
	c, _, _ := newCore(t)
	ctx := context.Background()
	room := openRoom(t, c)
	_, _ = c.AppendMessage(ctx, room.ID, business, entity.MessageDraft{Content: "hello"})
	_, _ = c.AppendMessage(ctx, room.ID, user, entity.MessageDraft{Content: "hi"})

	n, err := c.MarkAllRead(ctx, room.ID, user)
	if err != nil || n != 1 {
		t.Fatalf("MarkAllRead = %d, %v", n, err)
	}
	got, _ := c.GetRoom(ctx, room.ID, user)
	for _, m := range got.Messages {
		if m.SenderType == entity.SenderUser && m.Read {
			t.Fatal("reader's own message must stay unread")
		}
	}
}

func TestConfirmedCannotReturnToPending(t *testing.T) {
	c, _, pub := newCore(t)
	ctx := context.Background()
	room := openRoom(t, c)

	appt, err := c.CreateAppointment(ctx, room.ID, user, validDraft())
	if err != nil {
		t.Fatal(err)
	}
	if appt.Status != entity.StatusPending {
		t.Fatalf("status = %s", appt.Status)
	}

	confirmed, err := c.ChangeAppointmentStatus(ctx, room.ID, appt.ID, business, entity.StatusChange{Status: entity.StatusConfirmed})
	if err != nil || confirmed.Status != entity.StatusConfirmed {
		t.Fatalf("confirm = %+v, %v", confirmed, err)
	}

	_, err = c.ChangeAppointmentStatus(ctx, room.ID, appt.ID, business, entity.StatusChange{Status: entity.StatusPending})
	var transition *entity.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	got, _ := c.GetRoom(ctx, room.ID, user)
	last := got.Messages[len(got.Messages)-1]
	if !last.System || last.SenderType != entity.SenderBusiness {
		t.Fatalf("expected a system summary from the business, got %+v", last)
	}

	c.Wait()
	updates := pub.ofType(entity.EventAppointmentUpdate)
	if len(updates) != 2 {
		t.Fatalf("appointment events = %d, want 2", len(updates))
	}
	channels := map[string]bool{}
	for _, u := range updates {
		channels[u.channel] = true
	}
	if !channels["business_b1"] || !channels["user_u1"] {
		t.Fatalf("appointment events went to %v", channels)
	}
}

func TestRescheduleThenConfirmAdoptsSuggestedSlot(t *testing.T) {
	c, _, _ := newCore(t)
	ctx := context.Background()
	room := openRoom(t, c)
	appt, _ := c.CreateAppointment(ctx, room.ID, user, validDraft())

	change := entity.StatusChange{
		Status:        entity.StatusRescheduleRequested,
		SuggestedTime: &entity.SuggestedTime{Date: "2025-06-01", Time: "10:00"},
	}
	rescheduled, err := c.ChangeAppointmentStatus(ctx, room.ID, appt.ID, user, change)
	if err != nil {
		t.Fatal(err)
	}
	if rescheduled.SuggestedTime == nil || rescheduled.SuggestedTime.SuggestedAt.IsZero() {
		t.Fatalf("suggested time not recorded: %+v", rescheduled.SuggestedTime)
	}

	confirmed, err := c.ChangeAppointmentStatus(ctx, room.ID, appt.ID, business, entity.StatusChange{Status: entity.StatusConfirmed})
	if err != nil {
		t.Fatal(err)
	}
	if confirmed.PreferredDate != "2025-06-01" || confirmed.PreferredTime != "10:00" {
		t.Fatalf("slot = %s %s", confirmed.PreferredDate, confirmed.PreferredTime)
	}
	if confirmed.SuggestedTime != nil {
		t.Fatal("suggested time should be cleared once accepted")
	}
}

func TestUserCannotConfirm(t *testing.T) {
	c, _, _ := newCore(t)
	ctx := context.Background()
	room := openRoom(t, c)
	appt, _ := c.CreateAppointment(ctx, room.ID, user, validDraft())

	_, err := c.ChangeAppointmentStatus(ctx, room.ID, appt.ID, user, entity.StatusChange{Status: entity.StatusConfirmed})
	if !entity.IsKind(err, entity.KindAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestTerminalStatusesAreFinal(t *testing.T) {
	for _, terminal := range []entity.AppointmentStatus{entity.StatusDeclined, entity.StatusCanceled} {
		t.Run(string(terminal), func(t *testing.T) {
			c, _, _ := newCore(t)
			ctx := context.Background()
			room := openRoom(t, c)
			appt, _ := c.CreateAppointment(ctx, room.ID, user, validDraft())
			if _, err := c.ChangeAppointmentStatus(ctx, room.ID, appt.ID, business, entity.StatusChange{Status: terminal}); err != nil {
				t.Fatal(err)
			}
			for _, next := range []entity.AppointmentStatus{entity.StatusPending, entity.StatusConfirmed, entity.StatusCompleted, entity.StatusCanceled} {
				_, err := c.ChangeAppointmentStatus(ctx, room.ID, appt.ID, business, entity.StatusChange{Status: next})
				if !entity.IsKind(err, entity.KindInvalidTransition) {
					t.Fatalf("%s -> %s: got %v", terminal, next, err)
				}
			}
		})
	}
}

func TestStatusChangeNoteIsPosted(t *testing.T) {
	c, _, _ := newCore(t)
	ctx := context.Background()
	room := openRoom(t, c)
	appt, _ := c.CreateAppointment(ctx, room.ID, user, validDraft())

	change := entity.StatusChange{Status: entity.StatusCanceled, Message: "Something came up"}
	if _, err := c.ChangeAppointmentStatus(ctx, room.ID, appt.ID, user, change); err != nil {
		t.Fatal(err)
	}
	got, _ := c.GetRoom(ctx, room.ID, user)
	if len(got.Messages) != 1 || got.Messages[0].Content != "Something came up" || got.Messages[0].System {
		t.Fatalf("messages = %+v", got.Messages)
	}
}

func TestUnknownAppointment(t *testing.T) {
	c, _, _ := newCore(t)
	room := openRoom(t, c)
	_, err := c.ChangeAppointmentStatus(context.Background(), room.ID, "missing", business, entity.StatusChange{Status: entity.StatusConfirmed})
	if !entity.IsKind(err, entity.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRejectsPlainHTTPImage(t *testing.T) {
	c, store, _ := newCore(t)
	ctx := context.Background()
	room := openRoom(t, c)

	draft := entity.MessageDraft{Image: &entity.Image{URL: "http://cdn.example.com/a.png", Type: "image/png", Size: 100}}
	_, err := c.AppendMessage(ctx, room.ID, user, draft)
	if !entity.IsKind(err, entity.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, _ := store.GetRoom(ctx, room.ID)
	if len(got.Messages) != 0 {
		t.Fatal("rejected message was stored")
	}
}

func TestBlankContentRejected(t *testing.T) {
	c, _, _ := newCore(t)
	room := openRoom(t, c)
	_, err := c.AppendMessage(context.Background(), room.ID, user, entity.MessageDraft{Content: "   "})
	if !entity.IsKind(err, entity.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConcurrentAppendsFromBothParties(t *testing.T) {
	c, _, _ := newCore(t)
	ctx := context.Background()
	room := openRoom(t, c)
	_, _ = c.AppendMessage(ctx, room.ID, business, entity.MessageDraft{Content: "welcome"})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := c.AppendMessage(ctx, room.ID, user, entity.MessageDraft{Content: "A"}); err != nil {
			t.Error(err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := c.AppendMessage(ctx, room.ID, business, entity.MessageDraft{Content: "B"}); err != nil {
			t.Error(err)
		}
	}()
	wg.Wait()

	got, _ := c.GetRoom(ctx, room.ID, user)
	if len(got.Messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(got.Messages))
	}
	contents := map[string]bool{}
	for _, m := range got.Messages {
		contents[m.Content] = true
	}
	if !contents["A"] || !contents["B"] {
		t.Fatalf("missing a concurrent append: %v", contents)
	}
}

func TestFanoutFailureDoesNotFailWrite(t *testing.T) {
	c, _, _ := newCore(t)
	c.SetPublisher(failingPublisher{})
	ctx := context.Background()
	room := openRoom(t, c)

	msg, err := c.AppendMessage(ctx, room.ID, user, entity.MessageDraft{Content: "Hi"})
	if err != nil {
		t.Fatalf("write failed because of fan-out: %v", err)
	}
	c.Wait()
	got, _ := c.GetRoom(ctx, room.ID, user)
	if len(got.Messages) != 1 || got.Messages[0].ID != msg.ID {
		t.Fatal("message not persisted")
	}
}

func TestNonPartyIsForbidden(t *testing.T) {
	c, _, _ := newCore(t)
	ctx := context.Background()
	room := openRoom(t, c)

	if _, err := c.AppendMessage(ctx, room.ID, stranger, entity.MessageDraft{Content: "hey"}); !entity.IsKind(err, entity.KindAuthorization) {
		t.Fatalf("append: got %v", err)
	}
	if _, err := c.GetRoom(ctx, room.ID, stranger); !entity.IsKind(err, entity.KindAuthorization) {
		t.Fatalf("get: got %v", err)
	}
	if _, err := c.GetRoom(ctx, "missing", user); !entity.IsKind(err, entity.KindNotFound) {
		t.Fatalf("missing room: got %v", err)
	}
}

func TestAutoReplyFollowsGate(t *testing.T) {
	c, _, _ := newCore(t)
	responder := &fakeResponder{}
	c.SetResponder(responder)
	ctx := context.Background()
	room := openRoom(t, c)

	_, _ = c.AppendMessage(ctx, room.ID, user, entity.MessageDraft{Content: "Are you open on Sunday?"})
	c.Wait()
	got, _ := c.GetRoom(ctx, room.ID, user)
	if len(got.Messages) != 2 {
		t.Fatalf("messages = %d, want user message and AI reply", len(got.Messages))
	}
	reply := got.Messages[1]
	if !reply.IsAI || reply.SenderType != entity.SenderBusiness || reply.SenderID != business.ID {
		t.Fatalf("reply = %+v", reply)
	}
	if len(responder.history) != 1 {
		t.Fatalf("history passed to responder = %d", len(responder.history))
	}

	if err := c.SetAIEnabled(ctx, business, business.ID, false); err != nil {
		t.Fatal(err)
	}
	_, _ = c.AppendMessage(ctx, room.ID, user, entity.MessageDraft{Content: "Hello?"})
	c.Wait()
	got, _ = c.GetRoom(ctx, room.ID, user)
	if len(got.Messages) != 3 {
		t.Fatalf("messages = %d, AI must stay silent while disabled", len(got.Messages))
	}
	if responder.calls != 1 {
		t.Fatalf("responder calls = %d", responder.calls)
	}
}

func TestBusinessMessagesDoNotTriggerReply(t *testing.T) {
	c, _, _ := newCore(t)
	responder := &fakeResponder{}
	c.SetResponder(responder)
	room := openRoom(t, c)

	_, _ = c.AppendMessage(context.Background(), room.ID, business, entity.MessageDraft{Content: "We have a slot at 3pm"})
	c.Wait()
	if responder.calls != 0 {
		t.Fatalf("responder called %d times for a business message", responder.calls)
	}
}

func TestAIGate(t *testing.T) {
	c, _, _ := newCore(t)
	ctx := context.Background()

	enabled, err := c.IsAIEnabled(ctx, "b9")
	if err != nil || !enabled {
		t.Fatalf("unset gate = %v, %v; want enabled", enabled, err)
	}
	if err = c.SetAIEnabled(ctx, user, "b9", false); !entity.IsKind(err, entity.KindAuthorization) {
		t.Fatalf("user toggling gate: got %v", err)
	}
	if err = c.SetAIEnabled(ctx, business, "b9", false); !entity.IsKind(err, entity.KindAuthorization) {
		t.Fatalf("other business toggling gate: got %v", err)
	}
}

func TestListRoomsForBothParties(t *testing.T) {
	c, _, _ := newCore(t)
	ctx := context.Background()
	room := openRoom(t, c)
	_, _ = c.AppendMessage(ctx, room.ID, user, entity.MessageDraft{Content: "Hi"})

	inbox, err := c.ListRooms(ctx, business)
	if err != nil || len(inbox) != 1 {
		t.Fatalf("business inbox = %+v, %v", inbox, err)
	}
	if inbox[0].UnreadCount != 1 {
		t.Fatalf("business unread = %d", inbox[0].UnreadCount)
	}
	inbox, _ = c.ListRooms(ctx, user)
	if len(inbox) != 1 || inbox[0].UnreadCount != 0 {
		t.Fatalf("user inbox = %+v", inbox)
	}
}

func TestSetRoomStatusNotifiesCounterparty(t *testing.T) {
	c, _, pub := newCore(t)
	ctx := context.Background()
	room := openRoom(t, c)

	got, err := c.SetRoomStatus(ctx, room.ID, business, entity.RoomArchived)
	if err != nil || got.Status != entity.RoomArchived {
		t.Fatalf("SetRoomStatus = %+v, %v", got, err)
	}
	if _, err = c.SetRoomStatus(ctx, room.ID, business, "deleted"); !entity.IsKind(err, entity.KindValidation) {
		t.Fatalf("unknown status: got %v", err)
	}
	c.Wait()
	updates := pub.ofType(entity.EventRoomUpdate)
	if len(updates) != 1 || updates[0].channel != "user_u1" {
		t.Fatalf("room updates = %+v", updates)
	}
}

func TestPage(t *testing.T) {
	msgs := make([]entity.Message, 5)
	for i := range msgs {
		msgs[i].ID = string(rune('a' + i))
	}
	ids := func(ms []entity.Message) string {
		s := ""
		for _, m := range ms {
			s += m.ID
		}
		return s
	}
	tests := []struct {
		limit, offset int
		want          string
	}{
		{2, 0, "de"},
		{2, 2, "bc"},
		{10, 0, "abcde"},
		{2, 4, "a"},
		{2, 5, ""},
		{0, 1, "abcd"},
	}
	for _, tt := range tests {
		if got := ids(page(msgs, tt.limit, tt.offset)); got != tt.want {
			t.Errorf("page(%d, %d) = %q, want %q", tt.limit, tt.offset, got, tt.want)
		}
	}
}

func TestOversizedAutoReplyIsTruncated(t *testing.T) {
	c, _, _ := newCore(t)
	c.SetResponder(verboseResponder{})
	ctx := context.Background()
	room := openRoom(t, c)

	if _, err := c.AppendMessage(ctx, room.ID, user, entity.MessageDraft{Content: "Tell me everything"}); err != nil {
		t.Fatal(err)
	}
	c.Wait()
	got, _ := c.GetRoom(ctx, room.ID, user)
	if len(got.Messages) != 2 {
		t.Fatalf("messages = %d, want user message and AI reply", len(got.Messages))
	}
	if n := utf8.RuneCountInString(got.Messages[1].Content); n != entity.MaxContentLength {
		t.Fatalf("reply length = %d, want %d", n, entity.MaxContentLength)
	}
}

// counter applies a user reschedule to the stored appointment, bypassing the core.
func counter(t *testing.T, store *memstore.Store, roomID, appointmentID, date, clock string) {
	t.Helper()
	ctx := context.Background()
	room, err := store.GetRoom(ctx, roomID)
	if err != nil {
		t.Fatal(err)
	}
	appt, _ := room.Appointment(appointmentID)
	change := entity.StatusChange{
		Status:        entity.StatusRescheduleRequested,
		SuggestedTime: &entity.SuggestedTime{Date: date, Time: clock},
	}
	update, err := negotiation.Plan(*appt, user, change, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if applied, err := store.UpdateAppointment(ctx, roomID, appointmentID, appt.Revision(), update); err != nil || applied == nil {
		t.Fatalf("concurrent reschedule not applied: %v", err)
	}
}

func assertStale(t *testing.T, err error) {
	t.Helper()
	var transition *entity.InvalidTransitionError
	if !errors.As(err, &transition) || !transition.Stale {
		t.Fatalf("expected stale transition error, got %v", err)
	}
}

func TestConfirmLosesRaceToReschedule(t *testing.T) {
	c, store, _ := newCore(t)
	ctx := context.Background()
	room := openRoom(t, c)
	appt, _ := c.CreateAppointment(ctx, room.ID, user, validDraft())

	racing := &racingStore{Store: store}
	racing.interfere = func() { counter(t, store, room.ID, appt.ID, "2030-01-01", "09:00") }
	c.SetRepository(racing)

	_, err := c.ChangeAppointmentStatus(ctx, room.ID, appt.ID, business, entity.StatusChange{Status: entity.StatusConfirmed})
	assertStale(t, err)

	got, _ := c.GetRoom(ctx, room.ID, business)
	stored := got.Appointments[0]
	if stored.Status != entity.StatusRescheduleRequested {
		t.Fatalf("status = %s, the business never saw the counter-offer", stored.Status)
	}
	if stored.PreferredDate != "2025-05-30" || stored.PreferredTime != "15:00" {
		t.Fatalf("preferred slot overwritten: %s %s", stored.PreferredDate, stored.PreferredTime)
	}
	if stored.SuggestedTime == nil || stored.SuggestedTime.Date != "2030-01-01" {
		t.Fatalf("counter-offer lost: %+v", stored.SuggestedTime)
	}
}

func TestConfirmOfSupersededSuggestionFails(t *testing.T) {
	c, store, _ := newCore(t)
	ctx := context.Background()
	room := openRoom(t, c)
	appt, _ := c.CreateAppointment(ctx, room.ID, user, validDraft())
	change := entity.StatusChange{
		Status:        entity.StatusRescheduleRequested,
		SuggestedTime: &entity.SuggestedTime{Date: "2025-06-01", Time: "10:00"},
	}
	if _, err := c.ChangeAppointmentStatus(ctx, room.ID, appt.ID, user, change); err != nil {
		t.Fatal(err)
	}

	racing := &racingStore{Store: store}
	racing.interfere = func() { counter(t, store, room.ID, appt.ID, "2025-07-07", "18:00") }
	c.SetRepository(racing)

	_, err := c.ChangeAppointmentStatus(ctx, room.ID, appt.ID, business, entity.StatusChange{Status: entity.StatusConfirmed})
	assertStale(t, err)

	got, _ := c.GetRoom(ctx, room.ID, business)
	stored := got.Appointments[0]
	if stored.Status != entity.StatusRescheduleRequested || stored.SuggestedTime == nil {
		t.Fatalf("appointment = %+v", stored)
	}
	if stored.SuggestedTime.Date != "2025-07-07" || stored.SuggestedTime.Time != "18:00" {
		t.Fatalf("newer counter-offer replaced by %+v", stored.SuggestedTime)
	}
	if stored.PreferredDate != "2025-05-30" {
		t.Fatalf("stale slot confirmed: %s", stored.PreferredDate)
	}
}
