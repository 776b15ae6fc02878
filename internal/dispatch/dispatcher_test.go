package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/whisper/chat-bot/internal/message"
	"github.com/whisper/chat-bot/internal/moderation"
	"github.com/whisper/chat-bot/internal/settings"
)

type stubAdapter struct {
	platform message.Platform
	sent     []string
	deleted  int
}

func (a *stubAdapter) Platform() message.Platform { return a.platform }

func (a *stubAdapter) ReplyToMessage(context.Context, *message.Message, string) error { return nil }

func (a *stubAdapter) DeleteNativeMessage(context.Context, any) error {
	a.deleted++
	return nil
}

func (a *stubAdapter) SendToChannel(_ context.Context, _ string, text string) error {
	a.sent = append(a.sent, text)
	return nil
}

func (a *stubAdapter) FormatMention(userID string) string { return "<@" + userID + ">" }

type stubLocalizer struct{}

func (stubLocalizer) GetString(id string, _ ...any) string { return id }

type failingModerator struct{ err error }

func (m failingModerator) Premoderate(_ context.Context, msg *message.Message) (moderation.Result, error) {
	return moderation.Result{Original: msg.Content, Content: msg.Content}, m.err
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *stubAdapter, *stubAdapter) {
	t.Helper()
	store := settings.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "discord", "g1", settings.KeyCensoring, settings.On)
	store.Set(ctx, "discord", "g1", settings.KeyBadWords, "badword")

	discord := &stubAdapter{platform: message.PlatformDiscord}
	slack := &stubAdapter{platform: message.PlatformSlack}
	d := NewDispatcher(moderation.New(store, stubLocalizer{}), discord, slack)
	return d, discord, slack
}

func TestNormalize(t *testing.T) {
	d, discord, slack := newTestDispatcher(t)

	msg, err := d.Normalize([]byte(`{"type":"discord_message","id":"m1","content":"hi","guild":{"id":"g1"},"channel":{"id":"c1"},"author":{"id":"u1"}}`))
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if msg.Platform != message.PlatformDiscord || msg.OrgID != "g1" || msg.Source != discord {
		t.Errorf("unexpected discord message %+v", msg)
	}

	msg, err = d.Normalize([]byte(`{"type":"slack_message","team_id":"T1","channel":"C1","user":"U1","text":"hi","ts":"1.0"}`))
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if msg.Platform != message.PlatformSlack || msg.OrgID != "T1" || msg.Source != slack {
		t.Errorf("unexpected slack message %+v", msg)
	}
}

func TestNormalize_NoAdapter(t *testing.T) {
	d := NewDispatcher(failingModerator{}, &stubAdapter{platform: message.PlatformDiscord})

	if _, err := d.Normalize([]byte(`{"type":"slack_message","text":"hi"}`)); err == nil {
		t.Error("expected error for platform without adapter")
	}
}

func TestDispatch_CleanMessageReachesHandler(t *testing.T) {
	d, discord, _ := newTestDispatcher(t)

	var got []*message.Message
	d.OnMessage(func(_ context.Context, msg *message.Message) { got = append(got, msg) })

	res, err := d.Dispatch(context.Background(), []byte(`{"type":"discord_message","id":"m1","content":"!help","guild":{"id":"g1"},"channel":{"id":"c1"},"author":{"id":"u1"}}`))
	if err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	if res.Censored {
		t.Error("clean message censored")
	}
	if len(got) != 1 || got[0].Content != "!help" {
		t.Errorf("handler received %v", got)
	}
	if len(discord.sent) != 0 || discord.deleted != 0 {
		t.Error("clean message triggered enforcement")
	}
}

func TestDispatch_CensoredMessageStops(t *testing.T) {
	d, discord, _ := newTestDispatcher(t)

	called := false
	d.OnMessage(func(context.Context, *message.Message) { called = true })

	res, err := d.Dispatch(context.Background(), []byte(`{"type":"discord_message","id":"m1","content":"a badword","guild":{"id":"g1"},"channel":{"id":"c1"},"author":{"id":"u1"}}`))
	if err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	if !res.Censored {
		t.Fatal("expected censored")
	}
	if called {
		t.Error("censored message reached the handler")
	}
	if len(discord.sent) != 1 || discord.deleted != 1 {
		t.Errorf("sent=%d deleted=%d, want 1 each", len(discord.sent), discord.deleted)
	}
}

func TestDispatch_InvalidEvent(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	if _, err := d.Dispatch(context.Background(), []byte(`{"type":"nope"}`)); err == nil {
		t.Error("expected error for invalid event")
	}
}

func TestDispatch_ModerationError(t *testing.T) {
	errDown := errors.New("settings down")
	d := NewDispatcher(failingModerator{err: errDown}, &stubAdapter{platform: message.PlatformDiscord})

	called := false
	d.OnMessage(func(context.Context, *message.Message) { called = true })

	_, err := d.Dispatch(context.Background(), []byte(`{"type":"discord_message","id":"m1","content":"x","guild":{"id":"g1"}}`))
	if !errors.Is(err, errDown) {
		t.Fatalf("error = %v, want %v", err, errDown)
	}
	if called {
		t.Error("message reached the handler after a failed moderation pass")
	}
}

func TestDispatch_BotNoticeEchoIgnored(t *testing.T) {
	d, discord, _ := newTestDispatcher(t)

	called := false
	d.OnMessage(func(context.Context, *message.Message) { called = true })

	// The notice posted for a censored message comes back from the gateway
	// authored by the bot and still matches the configured word.
	res, err := d.Dispatch(context.Background(), []byte(`{"type":"discord_message","id":"m2","content":"<@u1> said: badword","guild":{"id":"g1"},"channel":{"id":"c1"},"author":{"id":"bot","bot":true}}`))
	if err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	if res.Censored {
		t.Error("bot message censored")
	}
	if len(discord.sent) != 0 || discord.deleted != 0 {
		t.Errorf("sent=%d deleted=%d, want none", len(discord.sent), discord.deleted)
	}
	if called {
		t.Error("bot message reached the handler")
	}
}
