// Package message provides the source-independent message model shared by the
// command pipeline and the moderator. Every supported chat platform converts its
// native payload into a *Message through one of the From* constructors; shared
// code never branches on the native shape.
package message

import (
	"context"
	"strings"
	"sync"
)

// Platform identifies the chat platform a message came from.
type Platform string

// Supported platforms.
const (
	PlatformSlack   Platform = "slack"
	PlatformDiscord Platform = "discord"
)

func (p Platform) String() string {
	return string(p)
}

// SourceAdapter performs platform-specific operations on behalf of a Message.
// One implementation exists per platform. Implementations own platform
// constraints such as maximum message length.
type SourceAdapter interface {
	Platform() Platform
	ReplyToMessage(ctx context.Context, msg *Message, text string) error
	DeleteNativeMessage(ctx context.Context, native any) error
	SendToChannel(ctx context.Context, channelID string, text string) error
	FormatMention(userID string) string
}

// Message is a chat message in platform-independent form. Identifier fields
// are empty when the platform did not provide them.
type Message struct {
	Platform  Platform
	OrgID     string // team (Slack) or guild (Discord)
	ChannelID string
	AuthorID  string
	Content   string
	FromBot   bool // authored by a bot account, including this one

	// Native is the platform message this one was built from. It is borrowed
	// from the adapter call that produced it and must not outlive it.
	Native any
	Source SourceAdapter

	live bool

	mu          sync.Mutex
	replyBuffer strings.Builder
}

// New creates a message from already extracted fields. A nil native handle puts
// the message in buffer mode: replies are collected in ReplyBuffer instead of
// being sent anywhere.
func New(platform Platform, orgID, channelID, authorID, content string, native any, source SourceAdapter) *Message {
	return &Message{
		Platform:  platform,
		OrgID:     orgID,
		ChannelID: channelID,
		AuthorID:  authorID,
		Content:   content,
		Native:    native,
		Source:    source,
		live:      native != nil,
	}
}

// Live reports whether replies are routed through the source adapter.
func (m *Message) Live() bool {
	return m.live
}

// Reply answers the message with text. In live mode the call is delegated to
// the source adapter and its error is returned as is; the reply buffer is not
// touched. In buffer mode text is appended to the buffer and no adapter call
// is made.
func (m *Message) Reply(ctx context.Context, text string) error {
	if m.live {
		return m.Source.ReplyToMessage(ctx, m, text)
	}

	m.mu.Lock()
	m.replyBuffer.WriteString(text)
	m.mu.Unlock()
	return nil
}

// ReplyBuffer returns everything replied to a buffer-mode message so far.
func (m *Message) ReplyBuffer() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replyBuffer.String()
}
