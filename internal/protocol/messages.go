// Package protocol defines the JSON events exchanged between the bot and the
// platform gateways. Gateways own the platform connections; they publish
// inbound messages to the bot and execute the outbound actions the bot
// publishes back. All events follow an envelope format with a type
// discriminator.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/whisper/chat-bot/internal/message"
)

// ---------------------------------------------------------------------------
// Event type constants
// ---------------------------------------------------------------------------

// Gateway -> Bot event types.
const (
	TypeSlackMessage   = "slack_message"
	TypeDiscordMessage = "discord_message"
)

// Settings service -> Bot event types.
const (
	TypeSettingsChanged = "settings_changed"
)

// Bot -> Gateway event types.
const (
	TypeSend   = "send"
	TypeReply  = "reply"
	TypeDelete = "delete"
)

// ---------------------------------------------------------------------------
// Envelope — used for initial JSON parsing to extract the type discriminator.
// ---------------------------------------------------------------------------

// Envelope holds the event type and the raw JSON payload for deferred
// parsing into a concrete struct.
type Envelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements the json.Unmarshaler interface. It captures the
// full raw bytes and extracts only the "type" field so that the rest of the
// payload can be decoded later into the appropriate concrete struct.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	e.Raw = make(json.RawMessage, len(data))
	copy(e.Raw, data)

	var partial struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("protocol: failed to unmarshal envelope: %w", err)
	}
	if partial.Type == "" {
		return fmt.Errorf("protocol: missing or empty \"type\" field")
	}
	e.Type = partial.Type
	return nil
}

// ---------------------------------------------------------------------------
// Bot -> Gateway event structs
// ---------------------------------------------------------------------------

// SendMsg posts a standalone message to a channel.
type SendMsg struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Text      string `json:"text"`
}

// ReplyMsg answers a message. ReplyTo is the platform message id (Discord
// message id, Slack ts); ThreadTs keeps Slack replies in their thread.
type ReplyMsg struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	ReplyTo   string `json:"reply_to,omitempty"`
	ThreadTs  string `json:"thread_ts,omitempty"`
	Text      string `json:"text"`
}

// DeleteMsg removes a message.
type DeleteMsg struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

// ---------------------------------------------------------------------------
// Settings service -> Bot event structs
// ---------------------------------------------------------------------------

// SettingsChangedMsg announces that settings of an organization were written.
type SettingsChangedMsg struct {
	Type     string `json:"type"`
	Platform string `json:"platform"`
	OrgID    string `json:"org_id"`
}

// NewEventID returns a unique id for an outbound event. Gateways use it to
// drop redelivered events.
func NewEventID() string {
	return uuid.NewString()
}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// ParseInboundMessage parses a gateway event into the native message of its
// platform: *message.SlackMessage or *message.DiscordMessage. An error is
// returned for unknown or bot-only event types.
func ParseInboundMessage(data []byte) (string, any, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("protocol: failed to parse event: %w", err)
	}

	var (
		msg any
		err error
	)

	switch env.Type {
	case TypeSlackMessage:
		m := &message.SlackMessage{}
		err = json.Unmarshal(env.Raw, m)
		msg = m
	case TypeDiscordMessage:
		m := &message.DiscordMessage{}
		err = json.Unmarshal(env.Raw, m)
		msg = m
	default:
		return env.Type, nil, fmt.Errorf("protocol: unknown inbound event type: %q", env.Type)
	}

	if err != nil {
		return env.Type, nil, fmt.Errorf("protocol: failed to decode %q payload: %w", env.Type, err)
	}
	return env.Type, msg, nil
}

// ParseSettingsChanged parses a settings_changed event.
func ParseSettingsChanged(data []byte) (*SettingsChangedMsg, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: failed to parse event: %w", err)
	}
	if env.Type != TypeSettingsChanged {
		return nil, fmt.Errorf("protocol: unexpected event type: %q", env.Type)
	}

	msg := &SettingsChangedMsg{}
	if err := json.Unmarshal(env.Raw, msg); err != nil {
		return nil, fmt.Errorf("protocol: failed to decode %q payload: %w", env.Type, err)
	}
	if msg.Platform == "" || msg.OrgID == "" {
		return nil, fmt.Errorf("protocol: settings_changed requires platform and org_id")
	}
	return msg, nil
}

// NewInboundMessage encodes a native message as a gateway event. Gateways and
// replay tools use it; the bot itself only parses inbound events.
func NewInboundMessage(native any) ([]byte, error) {
	switch native.(type) {
	case *message.SlackMessage:
		return encode(TypeSlackMessage, native)
	case *message.DiscordMessage:
		return encode(TypeDiscordMessage, native)
	default:
		return nil, fmt.Errorf("protocol: unsupported native message %T", native)
	}
}

// NewOutboundMessage creates a JSON-encoded event for a gateway. The msgType
// is injected into the payload under the "type" key. The payload should be
// one of SendMsg, ReplyMsg, DeleteMsg or SettingsChangedMsg.
func NewOutboundMessage(msgType string, payload any) ([]byte, error) {
	return encode(msgType, payload)
}

func encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal payload: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("protocol: failed to unmarshal payload into map: %w", err)
	}

	m["type"] = msgType

	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal event: %w", err)
	}
	return out, nil
}
