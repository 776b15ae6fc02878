// Package moderation premoderates incoming chat messages. Organizations
// configure a list of bad words per platform; messages containing any of them
// are replaced by a censored copy posted by the bot, and the original is
// deleted.
package moderation
