package source

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/whisper/chat-bot/internal/message"
	"github.com/whisper/chat-bot/internal/protocol"
)

type published struct {
	platform string
	event    map[string]any
}

type fakePublisher struct {
	events []published
	err    error
}

func (p *fakePublisher) PublishOutbound(platform string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	var ev map[string]any
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	p.events = append(p.events, published{platform: platform, event: ev})
	return nil
}

func TestNew(t *testing.T) {
	pub := &fakePublisher{}
	for _, p := range []message.Platform{message.PlatformDiscord, message.PlatformSlack} {
		g, err := New(p, pub)
		if err != nil {
			t.Fatalf("New(%q) error: %v", p, err)
		}
		if g.Platform() != p {
			t.Errorf("Platform() = %q, want %q", g.Platform(), p)
		}
	}
	if _, err := New("irc", pub); err == nil {
		t.Error("expected error for unknown platform")
	}
}

func TestFormatMention(t *testing.T) {
	if got := NewDiscord(nil).FormatMention("42"); got != "<@42>" {
		t.Errorf("discord mention = %q", got)
	}
	if got := NewSlack(nil).FormatMention("U42"); got != "<@U42>" {
		t.Errorf("slack mention = %q", got)
	}
}

func TestReplyToMessage_Discord(t *testing.T) {
	pub := &fakePublisher{}
	g := NewDiscord(pub)
	msg := message.FromDiscord(&message.DiscordMessage{
		ID:      "m1",
		Channel: &message.DiscordChannel{ID: "c1"},
	}, g)

	if err := msg.Reply(context.Background(), "pong"); err != nil {
		t.Fatalf("Reply() error: %v", err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.platform != "discord" {
		t.Errorf("platform = %q, want discord", ev.platform)
	}
	if ev.event["type"] != protocol.TypeReply || ev.event["channel_id"] != "c1" ||
		ev.event["reply_to"] != "m1" || ev.event["text"] != "pong" {
		t.Errorf("unexpected event %v", ev.event)
	}
	if id, _ := ev.event["id"].(string); id == "" {
		t.Error("event id missing")
	}
}

func TestReplyToMessage_SlackThread(t *testing.T) {
	pub := &fakePublisher{}
	g := NewSlack(pub)
	msg := message.FromSlack(&message.SlackMessage{Channel: "C1", Ts: "2.0", ThreadTs: "1.0"}, g)

	if err := msg.Reply(context.Background(), "ok"); err != nil {
		t.Fatalf("Reply() error: %v", err)
	}
	ev := pub.events[0].event
	if ev["thread_ts"] != "1.0" || ev["reply_to"] != "2.0" || ev["channel_id"] != "C1" {
		t.Errorf("unexpected event %v", ev)
	}
}

func TestReplyToMessage_Chunked(t *testing.T) {
	pub := &fakePublisher{}
	g := NewDiscord(pub)
	msg := message.FromDiscord(&message.DiscordMessage{ID: "m1", Channel: &message.DiscordChannel{ID: "c1"}}, g)

	if err := msg.Reply(context.Background(), strings.Repeat("y", MaxDiscordChars+1)); err != nil {
		t.Fatalf("Reply() error: %v", err)
	}
	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	if pub.events[0].event["id"] == pub.events[1].event["id"] {
		t.Error("chunks share an event id")
	}
}

func TestReplyToMessage_PublishError(t *testing.T) {
	errBus := errors.New("bus down")
	g := NewDiscord(&fakePublisher{err: errBus})
	msg := message.FromDiscord(&message.DiscordMessage{ID: "m1", Channel: &message.DiscordChannel{ID: "c1"}}, g)

	if err := msg.Reply(context.Background(), "x"); !errors.Is(err, errBus) {
		t.Fatalf("Reply() error = %v, want %v", err, errBus)
	}
	if msg.ReplyBuffer() != "" {
		t.Error("failed reply leaked into the buffer")
	}
}

func TestSendToChannel(t *testing.T) {
	pub := &fakePublisher{}
	g := NewSlack(pub)

	if err := g.SendToChannel(context.Background(), "C9", "notice"); err != nil {
		t.Fatalf("SendToChannel() error: %v", err)
	}
	ev := pub.events[0].event
	if ev["type"] != protocol.TypeSend || ev["channel_id"] != "C9" || ev["text"] != "notice" {
		t.Errorf("unexpected event %v", ev)
	}
}

func TestSendToChannel_CanceledContext(t *testing.T) {
	pub := &fakePublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewSlack(pub).SendToChannel(ctx, "C9", "notice"); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(pub.events) != 0 {
		t.Error("published despite canceled context")
	}
}

func TestSendToChannel_InvalidUTF8(t *testing.T) {
	if err := NewSlack(&fakePublisher{}).SendToChannel(context.Background(), "C9", "\xff"); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestDeleteNativeMessage(t *testing.T) {
	pub := &fakePublisher{}

	if err := NewDiscord(pub).DeleteNativeMessage(context.Background(), &message.DiscordMessage{
		ID: "m1", Channel: &message.DiscordChannel{ID: "c1"},
	}); err != nil {
		t.Fatalf("discord delete error: %v", err)
	}
	if err := NewSlack(pub).DeleteNativeMessage(context.Background(), &message.SlackMessage{
		Channel: "C1", Ts: "1.5",
	}); err != nil {
		t.Fatalf("slack delete error: %v", err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	d := pub.events[0]
	if d.platform != "discord" || d.event["type"] != protocol.TypeDelete || d.event["channel_id"] != "c1" || d.event["message_id"] != "m1" {
		t.Errorf("unexpected discord event %+v", d)
	}
	s := pub.events[1]
	if s.platform != "slack" || s.event["channel_id"] != "C1" || s.event["message_id"] != "1.5" {
		t.Errorf("unexpected slack event %+v", s)
	}
}

func TestDeleteNativeMessage_Unsupported(t *testing.T) {
	tests := []struct {
		name   string
		g      *Gateway
		native any
	}{
		{"nil", NewDiscord(&fakePublisher{}), nil},
		{"wrong platform", NewSlack(&fakePublisher{}), &message.DiscordMessage{ID: "m1", Channel: &message.DiscordChannel{ID: "c1"}}},
		{"typed nil", NewDiscord(&fakePublisher{}), (*message.DiscordMessage)(nil)},
		{"no channel", NewDiscord(&fakePublisher{}), &message.DiscordMessage{ID: "m1"}},
		{"slack no ts", NewSlack(&fakePublisher{}), &message.SlackMessage{Channel: "C1"}},
		{"foreign type", NewSlack(&fakePublisher{}), "m1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.DeleteNativeMessage(context.Background(), tt.native)
			if !errors.Is(err, ErrUnsupportedNative) {
				t.Errorf("error = %v, want ErrUnsupportedNative", err)
			}
		})
	}
}
