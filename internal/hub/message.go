package hub

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies an inbound frame. Using a named type instead of
// bare strings so the dispatch switch stays exhaustive and typo-proof.
type MessageType string

const (
	MessageTypeAuthenticate   MessageType = "authenticate"
	MessageTypeJoinChat       MessageType = "join_chat"
	MessageTypeLeaveChat      MessageType = "leave_chat"
	MessageTypeTypingStart    MessageType = "typing_start"
	MessageTypeTypingStop     MessageType = "typing_stop"
	MessageTypeSubscribeStore MessageType = "subscribe_store_updates"
	MessageTypeSubscribeAdmin MessageType = "subscribe_admin_updates"
	MessageTypeOnlineUsers    MessageType = "request_online_users"
	MessageTypeSetStatus      MessageType = "set_status"
	MessageTypeBroadcast      MessageType = "broadcast"
	MessageTypeUnknown        MessageType = ""
)

// Broadcast topics a connection can opt into.
const (
	TopicStoreUpdates = "store_updates"
	TopicAdminUpdates = "admin_updates"
)

// Client-settable presence states. offline is reserved: it is only ever
// derived from the registry, never reported by a client.
const (
	StatusOnline = "online"
	StatusAway   = "away"
	StatusBusy   = "busy"
)

// Outbound event types.
const (
	EventAuthenticated   = "authenticated"
	EventAuthError       = "auth_error"
	EventError           = "error"
	EventJoinedChat      = "joined_chat"
	EventLeftChat        = "left_chat"
	EventSubscribed      = "subscribed"
	EventOnlineUsers     = "online_users"
	EventUserOnline      = "user_online"
	EventUserOffline     = "user_offline"
	EventUserTypingStart = "user_typing_start"
	EventUserTypingStop  = "user_typing_stop"
)

// AuthenticateData carries the bearer credential of the handshake frame.
type AuthenticateData struct {
	Token string `json:"token"`
}

// RoomData is shared by join_chat, leave_chat and the typing frames.
type RoomData struct {
	ChatID string `json:"chatId"`
}

// StatusData carries a client-reported presence status (online/away/busy).
type StatusData struct {
	Status string `json:"status"`
}

// BroadcastData is the admin relay payload: the event name to emit and its
// body, forwarded verbatim.
type BroadcastData struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Inbound is one decoded wire frame. Exactly one payload field is non-nil,
// matching Type; the router switches on Type and never re-parses raw JSON.
type Inbound struct {
	Type MessageType

	Authenticate *AuthenticateData
	Room         *RoomData
	Status       *StatusData
	Broadcast    *BroadcastData
}

type rawFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// DecodeInbound parses one wire frame into its tagged form. A frame whose
// type is not recognized decodes successfully with Type set to
// MessageTypeUnknown so the router can answer it; only malformed JSON is an
// error.
func DecodeInbound(raw []byte) (*Inbound, error) {
	var frame rawFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	in := &Inbound{Type: MessageType(frame.Type)}
	data := frame.Data
	if data == nil {
		data = json.RawMessage("{}")
	}

	switch in.Type {
	case MessageTypeAuthenticate:
		in.Authenticate = &AuthenticateData{}
		if err := json.Unmarshal(data, in.Authenticate); err != nil {
			return nil, fmt.Errorf("decode authenticate data: %w", err)
		}
	case MessageTypeJoinChat, MessageTypeLeaveChat, MessageTypeTypingStart, MessageTypeTypingStop:
		in.Room = &RoomData{}
		if err := json.Unmarshal(data, in.Room); err != nil {
			return nil, fmt.Errorf("decode room data: %w", err)
		}
	case MessageTypeSetStatus:
		in.Status = &StatusData{}
		if err := json.Unmarshal(data, in.Status); err != nil {
			return nil, fmt.Errorf("decode status data: %w", err)
		}
	case MessageTypeBroadcast:
		in.Broadcast = &BroadcastData{}
		if err := json.Unmarshal(data, in.Broadcast); err != nil {
			return nil, fmt.Errorf("decode broadcast data: %w", err)
		}
	case MessageTypeSubscribeStore, MessageTypeSubscribeAdmin, MessageTypeOnlineUsers:
		// No payload.
	default:
		in.Type = MessageTypeUnknown
	}

	return in, nil
}

// Outbound is one frame sent to a client. Event frames carry Data, error
// and info frames carry Message.
type Outbound struct {
	Type    string `json:"type"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func NewEvent(eventType string, data any) *Outbound {
	return &Outbound{Type: eventType, Data: data}
}

func NewError(message string) *Outbound {
	return &Outbound{Type: EventError, Message: message}
}

func NewAuthError(message string) *Outbound {
	return &Outbound{Type: EventAuthError, Message: message}
}

// Encode serializes the frame once so fan-out paths reuse the same bytes.
func (o *Outbound) Encode() ([]byte, error) {
	return json.Marshal(o)
}
