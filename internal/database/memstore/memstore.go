// Package memstore keeps chat rooms in process memory. Every method holds
// the store lock for the whole mutation, which gives the same single-document
// atomicity the Mongo repository relies on.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"MarketChat/entity"
)

type pairKey struct {
	userID     string
	businessID string
}

type Store struct {
	mu       sync.RWMutex
	rooms    map[string]*entity.ChatRoom
	byPair   map[pairKey]string
	settings map[string]entity.BusinessSettings
}

func New() *Store {
	return &Store{
		rooms:    make(map[string]*entity.ChatRoom),
		byPair:   make(map[pairKey]string),
		settings: make(map[string]entity.BusinessSettings),
	}
}

func (s *Store) FindRoomByParties(_ context.Context, userID, businessID string) (*entity.ChatRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPair[pairKey{userID, businessID}]
	if !ok {
		return nil, nil
	}
	return cloneRoom(s.rooms[id]), nil
}

func (s *Store) CreateRoomIfAbsent(_ context.Context, room *entity.ChatRoom) (*entity.ChatRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{room.UserID, room.BusinessID}
	if id, ok := s.byPair[key]; ok {
		return cloneRoom(s.rooms[id]), nil
	}
	stored := cloneRoom(room)
	stored.Normalize()
	s.rooms[stored.ID] = stored
	s.byPair[key] = stored.ID
	return cloneRoom(stored), nil
}

func (s *Store) GetRoom(_ context.Context, roomID string) (*entity.ChatRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, entity.NotFound("room %s not found", roomID)
	}
	return cloneRoom(room), nil
}

func (s *Store) ListRooms(_ context.Context, party entity.Party) ([]entity.RoomSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]entity.RoomSummary, 0)
	for _, room := range s.rooms {
		if !room.HasParty(party) {
			continue
		}
		summaries = append(summaries, room.Summary(party.Type))
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})
	return summaries, nil
}

func (s *Store) AppendMessage(_ context.Context, roomID string, msg entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return entity.NotFound("room %s not found", roomID)
	}
	room.Messages = append(room.Messages, msg)
	room.LastActivity = msg.CreatedAt
	return nil
}

func (s *Store) AppendAppointment(_ context.Context, roomID string, appt entity.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return entity.NotFound("room %s not found", roomID)
	}
	room.Appointments = append(room.Appointments, appt)
	room.LastActivity = appt.CreatedAt
	return nil
}

// UpdateAppointment applies update only if the appointment is still at
// revision expect. It returns nil without error when nothing matched.
func (s *Store) UpdateAppointment(_ context.Context, roomID, appointmentID string, expect entity.Revision, update entity.AppointmentUpdate) (*entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, entity.NotFound("room %s not found", roomID)
	}
	appt, ok := room.Appointment(appointmentID)
	if !ok || !expect.Matches(*appt) {
		return nil, nil
	}
	update.Apply(appt)
	room.LastActivity = update.UpdatedAt
	updated := cloneAppointment(*appt)
	return &updated, nil
}

func (s *Store) MarkRead(_ context.Context, roomID string, sender entity.SenderType, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return 0, entity.NotFound("room %s not found", roomID)
	}
	n := 0
	for i := range room.Messages {
		m := &room.Messages[i]
		if m.SenderType == sender && !m.Read {
			m.Read = true
			m.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (s *Store) SetRoomStatus(_ context.Context, roomID string, status entity.RoomStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return entity.NotFound("room %s not found", roomID)
	}
	room.Status = status
	room.LastActivity = at
	return nil
}

func (s *Store) GetBusinessSettings(_ context.Context, businessID string) (*entity.BusinessSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.settings[businessID]
	if !ok {
		return nil, nil
	}
	return &settings, nil
}

func (s *Store) SetAIEnabled(_ context.Context, businessID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings[businessID] = entity.BusinessSettings{
		BusinessID: businessID,
		AIEnabled:  enabled,
		UpdatedAt:  time.Now(),
	}
	return nil
}

func cloneRoom(r *entity.ChatRoom) *entity.ChatRoom {
	if r == nil {
		return nil
	}
	c := *r
	c.Messages = make([]entity.Message, len(r.Messages))
	for i, m := range r.Messages {
		if m.Image != nil {
			img := *m.Image
			m.Image = &img
		}
		c.Messages[i] = m
	}
	c.Appointments = make([]entity.Appointment, len(r.Appointments))
	for i, a := range r.Appointments {
		c.Appointments[i] = cloneAppointment(a)
	}
	return &c
}

func cloneAppointment(a entity.Appointment) entity.Appointment {
	if a.SuggestedTime != nil {
		st := *a.SuggestedTime
		a.SuggestedTime = &st
	}
	return a
}
