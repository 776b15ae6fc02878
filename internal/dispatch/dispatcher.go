// Package dispatch routes inbound gateway events through normalization and
// premoderation, then hands surviving messages to the command pipeline.
package dispatch

import (
	"context"
	"fmt"
	"log"

	"github.com/whisper/chat-bot/internal/message"
	"github.com/whisper/chat-bot/internal/metrics"
	"github.com/whisper/chat-bot/internal/moderation"
	"github.com/whisper/chat-bot/internal/protocol"
)

// Premoderator is the moderation pass applied to every inbound message.
// *moderation.Moderator satisfies it.
type Premoderator interface {
	Premoderate(ctx context.Context, msg *message.Message) (moderation.Result, error)
}

// MessageHandler receives messages that passed premoderation.
type MessageHandler func(ctx context.Context, msg *message.Message)

// Dispatcher converts inbound events to canonical messages using the adapter
// of their platform and runs them through the moderator.
type Dispatcher struct {
	adapters  map[message.Platform]message.SourceAdapter
	moderator Premoderator
	onMessage MessageHandler
}

// NewDispatcher creates a Dispatcher. Events of platforms without a registered
// adapter are rejected.
func NewDispatcher(moderator Premoderator, adapters ...message.SourceAdapter) *Dispatcher {
	d := &Dispatcher{
		adapters:  make(map[message.Platform]message.SourceAdapter, len(adapters)),
		moderator: moderator,
	}
	for _, a := range adapters {
		d.adapters[a.Platform()] = a
	}
	return d
}

// OnMessage registers the handler for messages that were not censored. If a
// handler was already registered it is replaced.
func (d *Dispatcher) OnMessage(h MessageHandler) {
	d.onMessage = h
}

// Normalize parses an inbound event and converts it to a canonical message.
func (d *Dispatcher) Normalize(data []byte) (*message.Message, error) {
	_, native, err := protocol.ParseInboundMessage(data)
	if err != nil {
		return nil, err
	}

	switch n := native.(type) {
	case *message.SlackMessage:
		src, err := d.adapter(message.PlatformSlack)
		if err != nil {
			return nil, err
		}
		return message.FromSlack(n, src), nil
	case *message.DiscordMessage:
		src, err := d.adapter(message.PlatformDiscord)
		if err != nil {
			return nil, err
		}
		return message.FromDiscord(n, src), nil
	default:
		return nil, fmt.Errorf("dispatch: unsupported native message %T", native)
	}
}

func (d *Dispatcher) adapter(p message.Platform) (message.SourceAdapter, error) {
	a, ok := d.adapters[p]
	if !ok {
		return nil, fmt.Errorf("dispatch: no adapter for platform %q", p)
	}
	return a, nil
}

// Dispatch handles one inbound event. The moderation result is returned so
// callers can observe the outcome. Censored and bot-authored messages are not
// passed on to the message handler.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) (moderation.Result, error) {
	msg, err := d.Normalize(data)
	if err != nil {
		metrics.MessagesTotal.WithLabelValues("unknown", "invalid").Inc()
		return moderation.Result{}, err
	}
	metrics.MessagesTotal.WithLabelValues(msg.Platform.String(), "received").Inc()

	res, err := d.moderator.Premoderate(ctx, msg)
	if err != nil {
		log.Printf("[dispatch] premoderate platform=%s org=%s channel=%s: %v",
			msg.Platform, msg.OrgID, msg.ChannelID, err)
		return res, err
	}

	if !res.Censored && !msg.FromBot && d.onMessage != nil {
		d.onMessage(ctx, msg)
	}
	return res, nil
}
