package moderation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/whisper/chat-bot/internal/message"
	"github.com/whisper/chat-bot/internal/metrics"
	"github.com/whisper/chat-bot/internal/settings"
)

// TemplateCensored is the localized notice posted in place of a censored
// message. It receives the author mention and the censored content.
const TemplateCensored = "moderator_censored_message"

// censorerCacheSize bounds the number of distinct bad words settings kept
// compiled.
const censorerCacheSize = 1024

// Localizer renders localized bot strings.
type Localizer interface {
	GetString(id string, args ...any) string
}

// Result describes the outcome of a moderation pass.
type Result struct {
	Censored bool
	Original string
	Content  string // censored content; equals Original when nothing matched
}

// Moderator premoderates messages using per-organization settings. It holds
// no per-message state and is safe for concurrent use.
type Moderator struct {
	settings  settings.Store
	lang      Localizer
	censorers *lru.Cache[string, *Censorer]
}

// New creates a Moderator reading settings from store and rendering notices
// with lang.
func New(store settings.Store, lang Localizer) *Moderator {
	// lru.New fails only for a non-positive size.
	censorers, _ := lru.New[string, *Censorer](censorerCacheSize)
	return &Moderator{settings: store, lang: lang, censorers: censorers}
}

// censorer returns the compiled Censorer for a bad words setting.
func (m *Moderator) censorer(badWords string) *Censorer {
	if c, ok := m.censorers.Get(badWords); ok {
		return c
	}
	c := NewCensorer(ParseBadWords(badWords))
	m.censorers.Add(badWords, c)
	return c
}

// Premoderate censors bad words in msg according to its organization's
// settings. When the content changed, a notice with the censored text is
// posted to the channel and the original message is deleted. Both actions
// are always attempted and awaited; their failures are returned together as
// an *EnforcementError.
//
// Messages without an organization (direct messages) and messages authored
// by bots, the bot's own notices included, are not moderated.
func (m *Moderator) Premoderate(ctx context.Context, msg *message.Message) (Result, error) {
	res := Result{Original: msg.Content, Content: msg.Content}
	if msg.OrgID == "" || msg.FromBot {
		return res, nil
	}

	start := time.Now()
	defer func() {
		metrics.ModerationLatency.Observe(time.Since(start).Seconds())
	}()

	platform := msg.Platform.String()

	enabled, err := settings.Enabled(ctx, m.settings, platform, msg.OrgID, settings.KeyCensoring)
	if err != nil {
		metrics.ModerationErrorsTotal.WithLabelValues(platform, "settings").Inc()
		return res, fmt.Errorf("%w: %s: %w", ErrSettingsUnavailable, settings.KeyCensoring, err)
	}
	if !enabled {
		return res, nil
	}

	badWords, err := m.settings.Get(ctx, platform, msg.OrgID, settings.KeyBadWords, "")
	if err != nil {
		metrics.ModerationErrorsTotal.WithLabelValues(platform, "settings").Inc()
		return res, fmt.Errorf("%w: %s: %w", ErrSettingsUnavailable, settings.KeyBadWords, err)
	}
	if badWords == "" {
		return res, nil
	}

	res.Content = m.censorer(badWords).Censor(msg.Content)
	if res.Content == res.Original {
		return res, nil
	}
	res.Censored = true
	metrics.CensoredTotal.WithLabelValues(platform).Inc()

	log.Printf("[moderator] censored platform=%s org=%s channel=%s author=%s",
		platform, msg.OrgID, msg.ChannelID, msg.AuthorID)

	return res, m.enforce(ctx, msg, res.Content)
}

// enforce posts the censored notice and deletes the original concurrently and
// waits for both.
func (m *Moderator) enforce(ctx context.Context, msg *message.Message, censored string) error {
	if msg.Source == nil {
		return ErrNoSource
	}

	platform := msg.Platform.String()
	notice := m.lang.GetString(TemplateCensored, msg.Source.FormatMention(msg.AuthorID), censored)

	var (
		wg        sync.WaitGroup
		notifyErr error
		deleteErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		notifyErr = msg.Source.SendToChannel(ctx, msg.ChannelID, notice)
	}()
	go func() {
		defer wg.Done()
		deleteErr = msg.Source.DeleteNativeMessage(ctx, msg.Native)
	}()
	wg.Wait()

	if notifyErr != nil {
		metrics.ModerationErrorsTotal.WithLabelValues(platform, "notify").Inc()
		log.Printf("[moderator] notify failed platform=%s channel=%s: %v", platform, msg.ChannelID, notifyErr)
	}
	if deleteErr != nil {
		metrics.ModerationErrorsTotal.WithLabelValues(platform, "delete").Inc()
		log.Printf("[moderator] delete failed platform=%s channel=%s: %v", platform, msg.ChannelID, deleteErr)
	}
	if notifyErr != nil || deleteErr != nil {
		return &EnforcementError{NotifyErr: notifyErr, DeleteErr: deleteErr}
	}
	return nil
}
