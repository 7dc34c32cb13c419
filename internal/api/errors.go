package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// AuthError covers bad credentials and unauthorized mutations.
type AuthError struct {
	Op      string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: not authorized: %s", e.Op, e.Message)
}

// ValidationError covers malformed or duplicate input on create/signup.
type ValidationError struct {
	Op      string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid input: %s", e.Op, e.Message)
}

// NotFoundError covers operations on a story the server does not know.
type NotFoundError struct {
	Op string
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q not found", e.Op, e.ID)
}

// TransportError covers network-level failures where no server
// response was received, plus responses we could not decode.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// serverMessage is the error envelope the service uses on 4xx/5xx.
type serverMessage struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func readServerMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return resp.Status
	}

	var msg serverMessage
	if err := json.Unmarshal(body, &msg); err == nil {
		if msg.Error.Message != "" {
			return msg.Error.Message
		}
		if msg.Message != "" {
			return msg.Message
		}
	}
	return resp.Status
}

// statusError maps a non-2xx response onto the failure taxonomy.
// Every gateway operation funnels through here so the mapping lives
// in exactly one place.
func statusError(op, id string, resp *http.Response) error {
	message := readServerMessage(resp)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Op: op, Message: message}
	case http.StatusNotFound:
		return &NotFoundError{Op: op, ID: id}
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return &ValidationError{Op: op, Message: message}
	default:
		return &TransportError{Op: op, Err: fmt.Errorf("unexpected status: %s", message)}
	}
}
