package core

import (
	"MarketChat/entity"
	"MarketChat/internal/lib/sl"
	"MarketChat/internal/metrics"
	"context"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// AppendMessage validates the draft, checks the caller belongs to the room
// and pushes the message in one atomic update. Fan-out to the other party
// happens afterwards and never affects the result.
func (c *Core) AppendMessage(ctx context.Context, roomID string, caller entity.Party, draft entity.MessageDraft) (*entity.Message, error) {
	draft.Content = strings.TrimSpace(draft.Content)
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	room, err := c.roomFor(ctx, roomID, caller)
	if err != nil {
		return nil, err
	}

	msg, err := c.appendAs(ctx, room, caller, draft, false, false)
	if err != nil {
		return nil, err
	}

	if caller.Type == entity.SenderUser {
		c.autoReply(room)
	}
	return msg, nil
}

// appendAs persists a message authored by sender and notifies the other party.
// Generated messages go through the same contract as client drafts.
func (c *Core) appendAs(ctx context.Context, room *entity.ChatRoom, sender entity.Party, draft entity.MessageDraft, isAI, system bool) (*entity.Message, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	msg := entity.NewMessage(sender, draft, isAI, c.now())
	msg.System = system

	if err := c.repo.AppendMessage(ctx, room.ID, msg); err != nil {
		return nil, err
	}
	metrics.MessagesAppended.WithLabelValues(string(sender.Type), strconv.FormatBool(isAI)).Inc()

	c.publish(room.Counterparty(sender), entity.EventMessage, room.ID, msg)
	return &msg, nil
}

// autoReply answers a customer on behalf of the business when the business
// has the AI gate open. With the gate closed the conversation is left to a
// human operator.
func (c *Core) autoReply(room *entity.ChatRoom) {
	if c.responder == nil {
		return
	}
	log := c.log.With(
		slog.String("room_id", room.ID),
		slog.String("business_id", room.BusinessID),
	)

	c.background(c.replyTimeout, func(ctx context.Context) {
		enabled, err := c.IsAIEnabled(ctx, room.BusinessID)
		if err != nil {
			log.Warn("ai gate lookup failed, skipping auto reply", sl.Err(err))
			return
		}
		if !enabled {
			log.Debug("ai disabled, reply left to operator")
			metrics.AutoReplies.WithLabelValues("disabled").Inc()
			return
		}

		current, err := c.repo.GetRoom(ctx, room.ID)
		if err != nil {
			log.Warn("reload room for auto reply", sl.Err(err))
			return
		}
		history := current.Messages
		if len(history) > c.historyLimit {
			history = history[len(history)-c.historyLimit:]
		}

		text, err := c.responder.Reply(ctx, history)
		if err != nil {
			log.Warn("auto reply failed", sl.Err(err))
			metrics.AutoReplies.WithLabelValues("error").Inc()
			return
		}
		text = truncate(strings.TrimSpace(text), entity.MaxContentLength)
		if text == "" {
			metrics.AutoReplies.WithLabelValues("empty").Inc()
			return
		}

		business := current.PartyFor(entity.SenderBusiness)
		if _, err = c.appendAs(ctx, current, business, entity.MessageDraft{Content: text}, true, false); err != nil {
			log.Error("append auto reply", sl.Err(err))
			metrics.AutoReplies.WithLabelValues("error").Inc()
			return
		}
		metrics.AutoReplies.WithLabelValues("sent").Inc()
	})
}

// truncate cuts s to at most limit characters.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
