package core

import (
	"MarketChat/entity"
	"context"
)

// IsAIEnabled reports the business AI toggle; a business that never set it
// has AI replies enabled.
func (c *Core) IsAIEnabled(ctx context.Context, businessID string) (bool, error) {
	settings, err := c.repo.GetBusinessSettings(ctx, businessID)
	if err != nil {
		return false, err
	}
	if settings == nil {
		return true, nil
	}
	return settings.AIEnabled, nil
}

// SetAIEnabled lets a business flip its own toggle.
func (c *Core) SetAIEnabled(ctx context.Context, caller entity.Party, businessID string, enabled bool) error {
	if caller.Type != entity.SenderBusiness || caller.ID != businessID {
		return entity.Forbidden("only the business may change its AI setting")
	}
	return c.repo.SetAIEnabled(ctx, businessID, enabled)
}
