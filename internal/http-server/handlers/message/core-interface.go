package message

import (
	"MarketChat/entity"
	"context"
)

type Core interface {
	AppendMessage(ctx context.Context, roomID string, caller entity.Party, draft entity.MessageDraft) (*entity.Message, error)
}
