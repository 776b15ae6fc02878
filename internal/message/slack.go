package message

// SlackMessage is the subset of a Slack "message" event the bot consumes.
type SlackMessage struct {
	TeamID   string `json:"team_id"`
	Channel  string `json:"channel"`
	User     string `json:"user"`
	Text     string `json:"text"`
	Ts       string `json:"ts"`
	ThreadTs string `json:"thread_ts,omitempty"`
	BotID    string `json:"bot_id,omitempty"`
}

// FromSlack converts a Slack message event. A nil event yields an empty
// buffer-mode message.
func FromSlack(sm *SlackMessage, source SourceAdapter) *Message {
	if sm == nil {
		return New(PlatformSlack, "", "", "", "", nil, source)
	}
	msg := New(PlatformSlack, sm.TeamID, sm.Channel, sm.User, sm.Text, sm, source)
	msg.FromBot = sm.BotID != ""
	return msg
}
