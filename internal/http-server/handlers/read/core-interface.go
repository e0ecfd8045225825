package read

import (
	"MarketChat/entity"
	"context"
)

type Core interface {
	MarkAllRead(ctx context.Context, roomID string, reader entity.Party) (int, error)
}
