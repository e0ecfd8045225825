package room

import (
	"MarketChat/entity"
	"context"
)

type Core interface {
	ListRooms(ctx context.Context, party entity.Party) ([]entity.RoomSummary, error)
	OpenRoom(ctx context.Context, caller entity.Party, counterpartyID string) (*entity.ChatRoom, error)
	GetRoom(ctx context.Context, roomID string, caller entity.Party) (*entity.ChatRoom, error)
	GetMessages(ctx context.Context, roomID string, caller entity.Party, limit, offset int) ([]entity.Message, error)
	SetRoomStatus(ctx context.Context, roomID string, caller entity.Party, status entity.RoomStatus) (*entity.ChatRoom, error)
}
