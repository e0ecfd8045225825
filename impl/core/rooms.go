package core

import (
	"MarketChat/entity"
	"MarketChat/internal/lib/validate"
	"context"
	"log/slog"
)

// GetOrCreateRoom returns the pair's room, creating it with empty
// collections on first contact.
func (c *Core) GetOrCreateRoom(ctx context.Context, userID, businessID string) (*entity.ChatRoom, error) {
	if !validate.PartyID(userID) {
		return nil, entity.Validation("user id %q is malformed", userID)
	}
	if !validate.PartyID(businessID) {
		return nil, entity.Validation("business id %q is malformed", businessID)
	}

	room, err := c.repo.FindRoomByParties(ctx, userID, businessID)
	if err != nil {
		return nil, err
	}
	if room != nil {
		return room, nil
	}

	room, err = c.repo.CreateRoomIfAbsent(ctx, entity.NewChatRoom(userID, businessID, c.now()))
	if err != nil {
		return nil, err
	}
	c.log.With(
		slog.String("room_id", room.ID),
		slog.String("user_id", userID),
		slog.String("business_id", businessID),
	).Debug("room ready")
	return room, nil
}

// OpenRoom opens the caller's room with counterpartyID.
func (c *Core) OpenRoom(ctx context.Context, caller entity.Party, counterpartyID string) (*entity.ChatRoom, error) {
	switch caller.Type {
	case entity.SenderUser:
		return c.GetOrCreateRoom(ctx, caller.ID, counterpartyID)
	case entity.SenderBusiness:
		return c.GetOrCreateRoom(ctx, counterpartyID, caller.ID)
	default:
		return nil, entity.Forbidden("unknown party type %q", caller.Type)
	}
}

// roomFor loads the room and checks that caller is one of its parties.
func (c *Core) roomFor(ctx context.Context, roomID string, caller entity.Party) (*entity.ChatRoom, error) {
	if !validate.PartyID(roomID) {
		return nil, entity.Validation("room id %q is malformed", roomID)
	}
	if !caller.Type.Valid() {
		return nil, entity.Forbidden("unknown party type %q", caller.Type)
	}
	room, err := c.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParty(caller) {
		return nil, entity.Forbidden("caller is not a party to room %s", roomID)
	}
	return room, nil
}

func (c *Core) GetRoom(ctx context.Context, roomID string, caller entity.Party) (*entity.ChatRoom, error) {
	return c.roomFor(ctx, roomID, caller)
}

// ListRooms returns the party's inbox ordered by last activity, newest first.
func (c *Core) ListRooms(ctx context.Context, party entity.Party) ([]entity.RoomSummary, error) {
	if !party.Type.Valid() {
		return nil, entity.Validation("unknown party type %q", party.Type)
	}
	if !validate.PartyID(party.ID) {
		return nil, entity.Validation("party id %q is malformed", party.ID)
	}
	return c.repo.ListRooms(ctx, party)
}

// GetMessages pages backwards from the newest message; offset skips that
// many of the newest. The page itself is in chronological order.
func (c *Core) GetMessages(ctx context.Context, roomID string, caller entity.Party, limit, offset int) ([]entity.Message, error) {
	room, err := c.roomFor(ctx, roomID, caller)
	if err != nil {
		return nil, err
	}
	return page(room.Messages, limit, offset), nil
}

func page(messages []entity.Message, limit, offset int) []entity.Message {
	end := len(messages) - offset
	if end <= 0 {
		return []entity.Message{}
	}
	start := end - limit
	if start < 0 || limit <= 0 {
		start = 0
	}
	return messages[start:end]
}

func (c *Core) SetRoomStatus(ctx context.Context, roomID string, caller entity.Party, status entity.RoomStatus) (*entity.ChatRoom, error) {
	if !status.Valid() {
		return nil, entity.Validation("unknown room status %q", status)
	}
	room, err := c.roomFor(ctx, roomID, caller)
	if err != nil {
		return nil, err
	}
	now := c.now()
	if err = c.repo.SetRoomStatus(ctx, roomID, status, now); err != nil {
		return nil, err
	}
	room.Status = status
	room.LastActivity = now

	c.publish(room.Counterparty(caller), entity.EventRoomUpdate, room.ID, room.Summary(room.Counterparty(caller).Type))
	return room, nil
}
