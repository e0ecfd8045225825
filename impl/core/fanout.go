package core

import (
	"MarketChat/entity"
	"MarketChat/internal/lib/sl"
	"MarketChat/internal/metrics"
	"context"
	"encoding/json"
	"log/slog"
)

// publish hands the event to the publisher in the background. Failures are
// logged and dropped; the persisted room stays the source of truth.
func (c *Core) publish(target entity.Party, eventType, roomID string, data interface{}) {
	if c.pub == nil {
		return
	}
	payload, err := json.Marshal(entity.Event{
		Type:   eventType,
		RoomID: roomID,
		Data:   data,
		SentAt: c.now(),
	})
	if err != nil {
		c.log.Error("marshal event", slog.String("type", eventType), sl.Err(err))
		return
	}
	channel := target.Channel()

	c.background(c.fanoutTimeout, func(ctx context.Context) {
		if err := c.pub.Publish(ctx, channel, payload); err != nil {
			metrics.FanoutFailures.WithLabelValues(eventType).Inc()
			c.log.With(
				slog.String("channel", channel),
				slog.String("type", eventType),
				slog.String("room_id", roomID),
			).Warn("fan-out dropped", sl.Err(err))
			return
		}
		metrics.FanoutPublished.WithLabelValues(eventType).Inc()
	})
}
