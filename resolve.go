package main

import (
	"strings"
	"time"
)

// InboundMessage is what the platform layer hands the engine for one
// delivered message. Text is already normalized; RawText keeps the original
// for prefix checks only.
type InboundMessage struct {
	Text      string
	RawText   string
	Author    string // display name
	AuthorID  string
	Channel   string // channel name
	ChannelID string // transport channel ID, used for replies
	// Mentions lists referenced users (display names), bot excluded.
	Mentions []string
	// BotMentioned: bot referenced anywhere. BotAddressed: message starts
	// with the bot mention token.
	BotMentioned bool
	BotAddressed bool
}

type ActionKind int

const (
	ActionIgnore ActionKind = iota
	ActionLogTask
	ActionUserTasksTillDate
	ActionUserTasksOnDate
	ActionAllTasksTillDate
	ActionAllTasksOnDate
	ActionUserTasksToday
	ActionAllTasksToday
	ActionUserTasksYesterday
	ActionAllTasksYesterday
	ActionUserTaskHistory
)

// Action is the resolved outcome for one message: either ignore it, store
// it as a task, or run one of the nine report queries.
type Action struct {
	Kind ActionKind
	User string // query target, display name
	Date string // YYYY-MM-DD, set for every dated kind
}

// ShouldLog reports whether a message qualifies as a task to persist:
// posted in a watched channel, not addressed to the bot, not a command.
func ShouldLog(msg InboundMessage, cfg Config) bool {
	if !cfg.IsWatchedChannel(msg.Channel) {
		return false
	}
	if msg.BotAddressed {
		return false
	}
	if strings.HasPrefix(strings.TrimSpace(msg.RawText), cfg.CommandPrefix) {
		return false
	}
	return true
}

// Resolve maps one inbound message to an Action. Queries require the bot to
// be referenced; everything else in a watched channel is a task to log. A
// watched-channel message that also mentions the bot resolves to the query
// alone and is not stored.
func Resolve(msg InboundMessage, cfg Config, now time.Time) Action {
	if msg.Text == "" {
		return Action{Kind: ActionIgnore}
	}

	if msg.BotMentioned {
		return resolveQuery(ExtractIntent(msg.Text, msg.Mentions, now), now)
	}

	if ShouldLog(msg, cfg) {
		return Action{Kind: ActionLogTask}
	}

	return Action{Kind: ActionIgnore}
}

func resolveQuery(intent Intent, now time.Time) Action {
	if intent.Date != "" {
		switch {
		case intent.Till && intent.MentionedUser != "":
			return Action{Kind: ActionUserTasksTillDate, User: intent.MentionedUser, Date: intent.Date}
		case intent.MentionedUser != "":
			return Action{Kind: ActionUserTasksOnDate, User: intent.MentionedUser, Date: intent.Date}
		case intent.Till:
			return Action{Kind: ActionAllTasksTillDate, Date: intent.Date}
		default:
			return Action{Kind: ActionAllTasksOnDate, Date: intent.Date}
		}
	}

	switch intent.Relative {
	case relativeToday:
		if intent.MentionedUser != "" {
			return Action{Kind: ActionUserTasksToday, User: intent.MentionedUser, Date: todayISO(now)}
		}
		return Action{Kind: ActionAllTasksToday, Date: todayISO(now)}
	case relativeYesterday:
		if intent.MentionedUser != "" {
			return Action{Kind: ActionUserTasksYesterday, User: intent.MentionedUser, Date: yesterdayISO(now)}
		}
		return Action{Kind: ActionAllTasksYesterday, Date: yesterdayISO(now)}
	}

	if intent.MentionedUser != "" {
		return Action{Kind: ActionUserTaskHistory, User: intent.MentionedUser}
	}

	return Action{Kind: ActionIgnore}
}
