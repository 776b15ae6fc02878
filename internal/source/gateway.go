// Package source implements message.SourceAdapter for the supported chat
// platforms. Adapters do not talk to the platforms directly: they publish
// outbound events to the platform's gateway over the message bus.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/whisper/chat-bot/internal/message"
	"github.com/whisper/chat-bot/internal/metrics"
	"github.com/whisper/chat-bot/internal/protocol"
)

// ErrUnsupportedNative is returned when a native message handle does not
// belong to the adapter's platform or lacks the ids needed to address it.
var ErrUnsupportedNative = errors.New("source: unsupported native message")

// Publisher delivers outbound events to the gateway of a platform.
// *messaging.NATSClient satisfies it.
type Publisher interface {
	PublishOutbound(platform string, data []byte) error
}

var _ message.SourceAdapter = (*Gateway)(nil)

// Gateway is a SourceAdapter backed by a platform gateway.
type Gateway struct {
	platform message.Platform
	pub      Publisher
	maxChars int
}

// NewDiscord creates the Discord adapter.
func NewDiscord(pub Publisher) *Gateway {
	return &Gateway{platform: message.PlatformDiscord, pub: pub, maxChars: MaxDiscordChars}
}

// NewSlack creates the Slack adapter.
func NewSlack(pub Publisher) *Gateway {
	return &Gateway{platform: message.PlatformSlack, pub: pub, maxChars: MaxSlackChars}
}

// New creates the adapter for platform.
func New(platform message.Platform, pub Publisher) (*Gateway, error) {
	switch platform {
	case message.PlatformDiscord:
		return NewDiscord(pub), nil
	case message.PlatformSlack:
		return NewSlack(pub), nil
	default:
		return nil, fmt.Errorf("source: unknown platform %q", platform)
	}
}

// Platform returns the adapter's platform.
func (g *Gateway) Platform() message.Platform {
	return g.platform
}

// FormatMention renders a user mention. Slack and Discord share the syntax.
func (g *Gateway) FormatMention(userID string) string {
	return "<@" + userID + ">"
}

// ReplyToMessage answers msg in its channel, split into as many events as the
// platform's length limit requires. Discord replies reference the original
// message; Slack replies stay in the original's thread.
func (g *Gateway) ReplyToMessage(ctx context.Context, msg *message.Message, text string) error {
	if err := validateText(text); err != nil {
		return err
	}

	base := protocol.ReplyMsg{ChannelID: msg.ChannelID}
	switch n := msg.Native.(type) {
	case *message.DiscordMessage:
		base.ReplyTo = n.ID
	case *message.SlackMessage:
		base.ReplyTo = n.Ts
		base.ThreadTs = n.ThreadTs
	}

	for _, chunk := range Chunk(text, g.maxChars) {
		ev := base
		ev.ID = protocol.NewEventID()
		ev.Text = chunk
		if err := g.publish(ctx, protocol.TypeReply, ev); err != nil {
			return err
		}
	}
	return nil
}

// SendToChannel posts text to a channel, chunked like replies.
func (g *Gateway) SendToChannel(ctx context.Context, channelID string, text string) error {
	if err := validateText(text); err != nil {
		return err
	}

	for _, chunk := range Chunk(text, g.maxChars) {
		ev := protocol.SendMsg{ID: protocol.NewEventID(), ChannelID: channelID, Text: chunk}
		if err := g.publish(ctx, protocol.TypeSend, ev); err != nil {
			return err
		}
	}
	return nil
}

// DeleteNativeMessage asks the gateway to delete a message of this platform.
func (g *Gateway) DeleteNativeMessage(ctx context.Context, native any) error {
	ev := protocol.DeleteMsg{ID: protocol.NewEventID()}

	switch n := native.(type) {
	case *message.DiscordMessage:
		if g.platform != message.PlatformDiscord || n == nil || n.Channel == nil || n.ID == "" {
			return fmt.Errorf("%w: %T", ErrUnsupportedNative, native)
		}
		ev.ChannelID = n.Channel.ID
		ev.MessageID = n.ID
	case *message.SlackMessage:
		if g.platform != message.PlatformSlack || n == nil || n.Channel == "" || n.Ts == "" {
			return fmt.Errorf("%w: %T", ErrUnsupportedNative, native)
		}
		ev.ChannelID = n.Channel
		ev.MessageID = n.Ts
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedNative, native)
	}

	return g.publish(ctx, protocol.TypeDelete, ev)
}

func (g *Gateway) publish(ctx context.Context, action string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := protocol.NewOutboundMessage(action, payload)
	if err != nil {
		return err
	}
	if err := g.pub.PublishOutbound(g.platform.String(), data); err != nil {
		return fmt.Errorf("source: publish %s to %s gateway: %w", action, g.platform, err)
	}
	metrics.OutboundTotal.WithLabelValues(g.platform.String(), action).Inc()
	return nil
}
