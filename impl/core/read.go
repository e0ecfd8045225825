package core

import (
	"MarketChat/entity"
	"MarketChat/internal/metrics"
	"context"
	"log/slog"
)

// MarkAllRead flips every unread message the other party sent to reader.
// A second call in a row updates nothing.
func (c *Core) MarkAllRead(ctx context.Context, roomID string, reader entity.Party) (int, error) {
	room, err := c.roomFor(ctx, roomID, reader)
	if err != nil {
		return 0, err
	}

	now := c.now()
	n, err := c.repo.MarkRead(ctx, roomID, reader.Type.Other(), now)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	metrics.MessagesMarkedRead.Add(float64(n))
	c.log.With(
		slog.String("room_id", roomID),
		slog.String("reader", string(reader.Type)),
		slog.Int("count", n),
	).Debug("messages marked read")

	c.publish(room.Counterparty(reader), entity.EventReadReceipt, roomID, entity.ReadReceipt{
		Reader:          reader,
		MessagesUpdated: n,
		ReadAt:          now,
	})
	return n, nil
}

// UnreadCountFor is computed from the messages on every call.
func (c *Core) UnreadCountFor(room *entity.ChatRoom, party entity.SenderType) int {
	return room.UnreadCountFor(party)
}
