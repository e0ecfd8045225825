package entity

import "fmt"

// SenderType is the closed set of room parties.
type SenderType string

const (
	SenderUser     SenderType = "USER"
	SenderBusiness SenderType = "BUSINESS"
)

func ParseSenderType(s string) (SenderType, error) {
	switch SenderType(s) {
	case SenderUser:
		return SenderUser, nil
	case SenderBusiness:
		return SenderBusiness, nil
	default:
		return "", Validation("unknown party type %q", s)
	}
}

func (t SenderType) Valid() bool {
	switch t {
	case SenderUser, SenderBusiness:
		return true
	default:
		return false
	}
}

// Other returns the counter-party type.
func (t SenderType) Other() SenderType {
	switch t {
	case SenderUser:
		return SenderBusiness
	case SenderBusiness:
		return SenderUser
	default:
		panic(fmt.Sprintf("entity: invalid sender type %q", string(t)))
	}
}

// Party is an authenticated caller identity.
type Party struct {
	ID   string     `json:"id"`
	Type SenderType `json:"type"`
}

// Channel is the per-party real-time notification channel name.
func (p Party) Channel() string {
	switch p.Type {
	case SenderUser:
		return "user_" + p.ID
	case SenderBusiness:
		return "business_" + p.ID
	default:
		return ""
	}
}
