package message

// DiscordMessage is the subset of a Discord MESSAGE_CREATE payload the bot
// consumes. Guild, Channel, Author and Member are absent for some message
// kinds (direct messages, webhooks, system messages).
type DiscordMessage struct {
	ID      string          `json:"id"`
	Content string          `json:"content"`
	Guild   *DiscordGuild   `json:"guild,omitempty"`
	Channel *DiscordChannel `json:"channel,omitempty"`
	Author  *DiscordUser    `json:"author,omitempty"`
	Member  *DiscordMember  `json:"member,omitempty"`
}

// DiscordGuild is a Discord server.
type DiscordGuild struct {
	ID string `json:"id"`
}

// DiscordChannel is a Discord text channel or thread.
type DiscordChannel struct {
	ID string `json:"id"`
}

// DiscordUser is a Discord account.
type DiscordUser struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Bot      bool   `json:"bot,omitempty"`
}

// DiscordMember is the guild membership of the author.
type DiscordMember struct {
	ID   string `json:"id"`
	Nick string `json:"nick,omitempty"`
}

// FromDiscord converts a Discord message. Missing guild, channel or author
// leave the corresponding field empty. A nil message yields an empty
// buffer-mode message.
func FromDiscord(dm *DiscordMessage, source SourceAdapter) *Message {
	if dm == nil {
		return New(PlatformDiscord, "", "", "", "", nil, source)
	}

	var orgID, channelID, authorID string
	var fromBot bool
	if dm.Guild != nil {
		orgID = dm.Guild.ID
	}
	if dm.Channel != nil {
		channelID = dm.Channel.ID
	}
	if dm.Author != nil {
		authorID = dm.Author.ID
		fromBot = dm.Author.Bot
	}

	msg := New(PlatformDiscord, orgID, channelID, authorID, dm.Content, dm, source)
	msg.FromBot = fromBot
	return msg
}
