// Package broadcast implements the cross-session sync protocol: mutation
// events published through a shared key-value medium and applied by
// listeners in every other session of the same user.
package broadcast

import (
	"encoding/json"
	"fmt"

	"github.com/Pranoschal/BookVerse/pkg/models"
)

// EventType identifies one kind of library mutation.
type EventType string

const (
	EventAddBook      EventType = "ADD_BOOK"
	EventUpdateBook   EventType = "UPDATE_BOOK"
	EventDeleteBook   EventType = "DELETE_BOOK"
	EventRefreshBooks EventType = "REFRESH_BOOKS"
)

// Envelope is the transient wire form of one mutation event. Incremental
// events carry only the delta; a full snapshot is never broadcast, the
// REFRESH_BOOKS type forces receivers to reload from the gateway instead.
type Envelope struct {
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Origin    string          `json:"originTabId"`
}

// Command is a decoded mutation, exhaustively matched at the listener and
// action-surface boundaries.
type Command interface{ isCommand() }

type AddCommand struct{ Book models.Book }

type UpdateCommand struct{ Book models.Book }

type DeleteCommand struct{ ID string }

type RefreshCommand struct{}

func (AddCommand) isCommand()     {}
func (UpdateCommand) isCommand()  {}
func (DeleteCommand) isCommand()  {}
func (RefreshCommand) isCommand() {}

// Decode parses a raw slot value into its envelope and typed command.
func Decode(data []byte) (Envelope, Command, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("decode sync envelope: %w", err)
	}

	switch env.Type {
	case EventAddBook:
		var b models.Book
		if err := json.Unmarshal(env.Payload, &b); err != nil {
			return env, nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return env, AddCommand{Book: b}, nil
	case EventUpdateBook:
		var b models.Book
		if err := json.Unmarshal(env.Payload, &b); err != nil {
			return env, nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return env, UpdateCommand{Book: b}, nil
	case EventDeleteBook:
		var id string
		if err := json.Unmarshal(env.Payload, &id); err != nil {
			return env, nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return env, DeleteCommand{ID: id}, nil
	case EventRefreshBooks:
		return env, RefreshCommand{}, nil
	}
	return env, nil, fmt.Errorf("unknown sync event type %q", env.Type)
}
