package business

import (
	"MarketChat/entity"
	"context"
)

type Core interface {
	IsAIEnabled(ctx context.Context, businessID string) (bool, error)
	SetAIEnabled(ctx context.Context, caller entity.Party, businessID string, enabled bool) error
}
