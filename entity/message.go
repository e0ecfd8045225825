package entity

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"MarketChat/internal/lib/validate"

	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted image attachment (5 MiB).
const MaxImageSize = 5 << 20

// MaxContentLength is the longest accepted message text in characters.
const MaxContentLength = 5000

// Image describes an attachment already uploaded elsewhere. The size limit
// in the tag is MaxImageSize.
type Image struct {
	URL  string `json:"url" bson:"url" validate:"required,url,startswith=https://"`
	Type string `json:"type" bson:"type" validate:"required,startswith=image/"`
	Size int64  `json:"size" bson:"size" validate:"gt=0,lte=5242880"`
}

// Message is one element of a room's message list.
type Message struct {
	ID         string     `json:"id" bson:"id"`
	Content    string     `json:"content" bson:"content"`
	SenderID   string     `json:"senderId" bson:"sender_id"`
	SenderType SenderType `json:"senderType" bson:"sender_type"`
	Image      *Image     `json:"image,omitempty" bson:"image,omitempty"`
	Read       bool       `json:"read" bson:"read"`
	IsAI       bool       `json:"isAI" bson:"is_ai"`
	System     bool       `json:"system,omitempty" bson:"system,omitempty"`
	CreatedAt  time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updated_at"`
}

// MessageDraft is the client-supplied part of a new message.
type MessageDraft struct {
	Content string `json:"content"`
	Image   *Image `json:"image,omitempty"`
}

func (d *MessageDraft) Bind(_ *http.Request) error {
	d.Content = strings.TrimSpace(d.Content)
	return d.Validate()
}

// Validate enforces the content/image contract: at least one of them is
// present and any image is an HTTPS-hosted picture within MaxImageSize.
func (d *MessageDraft) Validate() error {
	if d.Content == "" && d.Image == nil {
		return Validation("message must have content or an image")
	}
	if utf8.RuneCountInString(d.Content) > MaxContentLength {
		return Validation("content exceeds %d characters", MaxContentLength)
	}
	if d.Image != nil {
		return d.Image.Validate()
	}
	return nil
}

func (i *Image) Validate() error {
	if err := validate.Struct(i); err != nil {
		return &Error{Kind: KindValidation, Message: "image: " + err.Error()}
	}
	return nil
}

// NewMessage builds an unread message authored by sender.
func NewMessage(sender Party, draft MessageDraft, isAI bool, now time.Time) Message {
	return Message{
		ID:         uuid.NewString(),
		Content:    draft.Content,
		SenderID:   sender.ID,
		SenderType: sender.Type,
		Image:      draft.Image,
		IsAI:       isAI,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CountUnread counts messages the reader has not seen yet: those sent by
// the other party and still flagged unread.
func CountUnread(messages []Message, reader SenderType) int {
	n := 0
	for _, m := range messages {
		if m.SenderType != reader && !m.Read {
			n++
		}
	}
	return n
}
