package shopclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized is the authentication failure category: the backend
// rejected the credentials or the bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is an operation failure reported by the backend.
type APIError struct {
	Status  int
	Message string
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(msg)}
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status: %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Rejection is a failure carrying the message shown to the shopper. Local
// rejections have no request behind them; wrapped backend failures keep the
// original error reachable through Unwrap.
type Rejection struct {
	Msg string
	Err error
}

func Reject(kind error, format string, args ...any) *Rejection {
	return &Rejection{Msg: fmt.Sprintf(format, args...), Err: kind}
}

func (r *Rejection) Error() string {
	if r.Err == nil {
		return r.Msg
	}
	return r.Msg + ": " + r.Err.Error()
}

func (r *Rejection) Unwrap() error { return r.Err }

func (r *Rejection) UserMessage() string { return r.Msg }

type userMessager interface {
	UserMessage() string
}

// Message turns err into the text shown to a shopper.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}

// StatusCode reports the backend status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
