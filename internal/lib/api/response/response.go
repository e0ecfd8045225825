package response

import (
	"MarketChat/entity"
	"errors"
	"net/http"
	"time"
)

type Response struct {
	Data          interface{}      `json:"data,omitempty"`
	Success       bool             `json:"success"`
	StatusMessage string           `json:"status_message,omitempty"`
	Kind          entity.ErrorKind `json:"kind,omitempty"`
	Timestamp     string           `json:"timestamp"`
}

func Ok(data interface{}) Response {
	return Response{
		Data:      data,
		Success:   true,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func Error(message string) Response {
	return Response{
		Success:       false,
		StatusMessage: message,
		Timestamp:     time.Now().Format(time.RFC3339),
	}
}

// Fail renders a classified error; infrastructure details stay in the logs.
func Fail(err error) Response {
	kind := entity.KindOf(err)
	resp := Error(err.Error())
	resp.Kind = kind
	if kind == entity.KindInfrastructure {
		resp.StatusMessage = "internal error, try again later"
	}
	return resp
}

// Status maps an error kind onto an HTTP status code.
func Status(err error) int {
	switch entity.KindOf(err) {
	case entity.KindValidation, entity.KindInvalidTransition:
		return http.StatusBadRequest
	case entity.KindUnauthenticated:
		return http.StatusUnauthorized
	case entity.KindAuthorization:
		return http.StatusForbidden
	case entity.KindNotFound:
		return http.StatusNotFound
	case "":
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether the failure was caused by the request.
func IsClientError(err error) bool {
	var e *entity.Error
	if errors.As(err, &e) && e.Kind == entity.KindInfrastructure {
		return false
	}
	return Status(err) < http.StatusInternalServerError
}

// BindError classifies a render.Bind failure. Decoding errors come back
// unclassified and are the client's fault.
func BindError(err error) error {
	var e *entity.Error
	if errors.As(err, &e) {
		return err
	}
	var transition *entity.InvalidTransitionError
	if errors.As(err, &transition) {
		return err
	}
	return entity.Validation("invalid request body: %v", err)
}
