// Package messaging provides a NATS client wrapper for the bus between the bot
// and its platform gateways. It handles connection lifecycle, subject-based
// subscriptions, and convenience methods for the inbound and outbound
// subjects of each platform.
package messaging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subject patterns shared with the gateways.
const (
	SubjectInbound  = "bot.inbound"  // + .<platform> (gateway -> bot)
	SubjectOutbound = "bot.outbound" // + .<platform> (bot -> gateway)

	SubjectSettingsChanged = "bot.settings.changed" // settings service -> every bot instance
)

// QueueModerators is the queue group bot instances join so that each inbound
// message is handled by exactly one instance.
const QueueModerators = "bot-moderators"

// NATSClient wraps the NATS connection with helper methods for pub/sub.
type NATSClient struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultNATSConfig returns sensible defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           "nats://localhost:4222",
		Name:          "chat-bot",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// NewNATSClient connects to NATS with the given config and returns a ready client.
// It returns an error if the initial connection fails.
func NewNATSClient(config NATSConfig) (*NATSClient, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &NATSClient{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// InboundSubject returns the subject gateways publish messages of platform to.
func InboundSubject(platform string) string {
	return SubjectInbound + "." + platform
}

// OutboundSubject returns the subject the gateway of platform consumes.
func OutboundSubject(platform string) string {
	return SubjectOutbound + "." + platform
}

// Publish sends data to the given NATS subject.
func (c *NATSClient) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Subscribe registers a handler for the given subject and stores the
// subscription internally for later cleanup.
func (c *NATSClient) Subscribe(subject string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}

// QueueSubscribe registers a handler for the given subject in a queue group
// and stores the subscription internally for later cleanup.
func (c *NATSClient) QueueSubscribe(subject, queue string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.QueueSubscribe(subject, queue, handler)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}

// SubscribeInbound subscribes to inbound messages of a platform and passes
// the raw event data to the handler.
func (c *NATSClient) SubscribeInbound(platform string, handler func(data []byte)) error {
	return c.QueueSubscribe(InboundSubject(platform), QueueModerators, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// SubscribeSettingsChanged subscribes to settings change notifications. Every
// instance receives each notification so that all local caches are dropped.
func (c *NATSClient) SubscribeSettingsChanged(handler func(data []byte)) error {
	return c.Subscribe(SubjectSettingsChanged, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// PublishOutbound publishes an outbound event to the gateway of a platform.
func (c *NATSClient) PublishOutbound(platform string, data []byte) error {
	return c.Publish(OutboundSubject(platform), data)
}

// Close drains all active subscriptions and closes the NATS connection.
func (c *NATSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			log.Printf("[nats] drain %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] connection drain: %v", err)
	}

	log.Printf("[nats] client closed")
}
