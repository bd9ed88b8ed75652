package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

var slackMentionRegex = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|[^>]*)?>`)

// MessageSender is the transport write surface the engine needs. The real
// implementation posts to Slack; tests substitute a recorder.
type MessageSender interface {
	SendMessage(channel, text string) error
}

type slackSender struct {
	api *slack.Client
}

func (s slackSender) SendMessage(channel, text string) error {
	_, _, err := s.api.PostMessage(channel, slack.MsgOptionText(text, false))
	return err
}

// SendChunked splits content to the configured transport limit and sends the
// pieces in order. A failed send aborts the remainder; already-sent chunks
// stand.
func SendChunked(sender MessageSender, channel, content string, max int) error {
	for _, chunk := range ChunkMessage(content, max) {
		if err := sender.SendMessage(channel, chunk); err != nil {
			return err
		}
	}
	return nil
}

func StartSlackBot(cfg Config, db *sql.DB, api *slack.Client, lang *LanguageService) error {
	auth, err := api.AuthTest()
	if err != nil {
		return fmt.Errorf("slack auth test: %w", err)
	}
	botUserID := auth.UserID
	log.Printf("Authenticated as %s (user=%s)", auth.User, botUserID)

	client := socketmode.New(api)

	go func() {
		for evt := range client.Events {
			switch evt.Type {
			case socketmode.EventTypeSlashCommand:
				client.Ack(*evt.Request)
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				log.Printf("Slash command received: %s from user=%s channel=%s", cmd.Command, cmd.UserID, cmd.ChannelID)
				go handleSlashCommand(api, db, cfg, cmd)
			case socketmode.EventTypeEventsAPI:
				client.Ack(*evt.Request)
				eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				go handleEventsAPI(api, db, cfg, lang, botUserID, eventsAPIEvent)
			}
		}
	}()

	log.Println("Slack bot connected via Socket Mode")
	return client.Run()
}

func handleEventsAPI(api *slack.Client, db *sql.DB, cfg Config, lang *LanguageService, botUserID string, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		handleMessageEvent(api, db, cfg, lang, botUserID, ev)
	}
}

func handleMessageEvent(api *slack.Client, db *sql.DB, cfg Config, lang *LanguageService, botUserID string, ev *slackevents.MessageEvent) {
	// Edits, joins, bot posts and our own messages are not tasks or queries.
	if ev.SubType != "" || ev.BotID != "" || ev.User == "" || ev.User == botUserID {
		return
	}

	msg := buildInboundMessage(api, botUserID, ev)
	if msg.Text == "" {
		log.Printf("message empty after normalization, skipping user=%s channel=%s", ev.User, msg.Channel)
		return
	}

	ctx := context.Background()
	sender := slackSender{api: api}
	if err := HandleIncomingMessage(ctx, db, cfg, lang, msg, sender, time.Now().In(cfg.Location)); err != nil {
		log.Printf("message handling error user=%s channel=%s: %v", ev.User, msg.Channel, err)
	}
}

// HandleIncomingMessage is the engine entry point: resolve the message to an
// action, then store a task or run the report query and send the reply.
func HandleIncomingMessage(ctx context.Context, db *sql.DB, cfg Config, lang *LanguageService, msg InboundMessage, sender MessageSender, now time.Time) error {
	action := Resolve(msg, cfg, now)

	switch action.Kind {
	case ActionIgnore:
		return nil

	case ActionLogTask:
		language := lang.Detect(ctx, msg.Text)
		task := Task{
			Content:   msg.Text,
			Author:    msg.Author,
			AuthorID:  msg.AuthorID,
			Channel:   msg.Channel,
			Language:  language,
			CreatedAt: now,
		}
		if err := InsertTask(db, task); err != nil {
			return fmt.Errorf("storing task: %w", err)
		}
		log.Printf("task stored author=%s channel=%s language=%s", msg.Author, msg.Channel, language)
		return nil

	default:
		reply, err := ExecuteQuery(db, action)
		if err != nil {
			return fmt.Errorf("running report query: %w", err)
		}

		target := cfg.ReportLanguage
		if target == "" {
			target = lang.Detect(ctx, msg.Text)
		}
		reply = lang.TranslateIfNeeded(ctx, reply, lang.Detect(ctx, reply), target)

		log.Printf("report sent kind=%d user=%q date=%q channel=%s length=%d", action.Kind, action.User, action.Date, msg.Channel, len(reply))
		return SendChunked(sender, msg.ChannelID, reply, cfg.MaxMessageLength)
	}
}

func buildInboundMessage(api *slack.Client, botUserID string, ev *slackevents.MessageEvent) InboundMessage {
	raw := ev.Text
	trimmed := strings.TrimSpace(raw)

	var mentions []string
	botMentioned := false
	for _, id := range mentionedUserIDs(raw) {
		if id == botUserID {
			botMentioned = true
			continue
		}
		mentions = append(mentions, userDisplayName(api, id))
	}

	return InboundMessage{
		Text:         NormalizeContent(raw),
		RawText:      raw,
		Author:       userDisplayName(api, ev.User),
		AuthorID:     ev.User,
		Channel:      channelName(api, ev.Channel),
		ChannelID:    ev.Channel,
		Mentions:     mentions,
		BotMentioned: botMentioned,
		BotAddressed: strings.HasPrefix(trimmed, "<@"+botUserID+">"),
	}
}

// mentionedUserIDs extracts every <@U...> user reference, in order of
// appearance, duplicates removed.
func mentionedUserIDs(text string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, match := range slackMentionRegex.FindAllStringSubmatch(text, -1) {
		id := match[1]
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

var userNameCache sync.Map // user ID -> display name

func userDisplayName(api *slack.Client, userID string) string {
	if cached, ok := userNameCache.Load(userID); ok {
		return cached.(string)
	}
	name := userID
	if user, err := api.GetUserInfo(userID); err == nil {
		if user.Profile.DisplayName != "" {
			name = user.Profile.DisplayName
		} else if user.RealName != "" {
			name = user.RealName
		} else if user.Name != "" {
			name = user.Name
		}
	} else {
		log.Printf("user info lookup error user=%s: %v", userID, err)
	}
	userNameCache.Store(userID, name)
	return name
}

var channelNameCache sync.Map // channel ID -> name

func channelName(api *slack.Client, channelID string) string {
	if cached, ok := channelNameCache.Load(channelID); ok {
		return cached.(string)
	}
	name := channelID
	info, err := api.GetConversationInfo(&slack.GetConversationInfoInput{ChannelID: channelID})
	if err == nil && info.Name != "" {
		name = info.Name
	} else if err != nil {
		log.Printf("conversation info lookup error channel=%s: %v", channelID, err)
	}
	channelNameCache.Store(channelID, name)
	return name
}

// --- Slash commands ---

func handleSlashCommand(api *slack.Client, db *sql.DB, cfg Config, cmd slack.SlashCommand) {
	switch cmd.Command {
	case "/tasks":
		handleListTasks(api, db, cfg, cmd)
	case "/task-delete":
		handleDeleteTask(api, db, cfg, cmd)
	case "/taskbot-help":
		handleTaskHelp(api, cfg, cmd)
	}
}

func handleListTasks(api *slack.Client, db *sql.DB, cfg Config, cmd slack.SlashCommand) {
	tasks, err := GetAllTasks(db)
	if err != nil {
		postEphemeral(api, cmd, fmt.Sprintf("Error loading tasks: %v", err))
		log.Printf("list tasks error user=%s: %v", cmd.UserID, err)
		return
	}
	if len(tasks) == 0 {
		postEphemeral(api, cmd, "No tasks stored yet.")
		return
	}

	sender := slackSender{api: api}
	if err := SendChunked(sender, cmd.ChannelID, formatTaskList(tasks), cfg.MaxMessageLength); err != nil {
		postEphemeral(api, cmd, "Error sending task list. Check bot permissions.")
		log.Printf("list tasks send error user=%s: %v", cmd.UserID, err)
		return
	}
	log.Printf("list tasks sent user=%s count=%d", cmd.UserID, len(tasks))
}

func formatTaskList(tasks []Task) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Stored tasks (%d):", len(tasks)))
	for _, t := range tasks {
		b.WriteString(fmt.Sprintf("\n• [%s] %s — %s in %s", t.CreatedAt.Format(reportDateLayout), t.Content, t.Author, t.Channel))
	}
	return b.String()
}

func handleDeleteTask(api *slack.Client, db *sql.DB, cfg Config, cmd slack.SlashCommand) {
	content := NormalizeContent(cmd.Text)
	if content == "" {
		postEphemeral(api, cmd, "Usage: /task-delete <exact task text>")
		return
	}

	deleted, err := DeleteTasksByContent(db, content)
	if err != nil {
		postEphemeral(api, cmd, fmt.Sprintf("Error deleting task: %v", err))
		log.Printf("task delete error user=%s: %v", cmd.UserID, err)
		return
	}
	if deleted == 0 {
		postEphemeral(api, cmd, fmt.Sprintf("No task found matching '%s'.", content))
		return
	}
	postEphemeral(api, cmd, fmt.Sprintf("Deleted %d task(s) matching '%s'.", deleted, content))
	log.Printf("task deleted user=%s count=%d", cmd.UserID, deleted)
}

func handleTaskHelp(api *slack.Client, cfg Config, cmd slack.SlashCommand) {
	help := "I log messages posted in watched channels as tasks and answer questions about them.\n\n" +
		"Mention me to query:\n" +
		"• `@taskbot today` — everyone's tasks today\n" +
		"• `@taskbot yesterday` — everyone's tasks yesterday\n" +
		"• `@taskbot 11/08/2024` — everyone's tasks on a date\n" +
		"• `@taskbot till 11/08/2024` — everyone's tasks up to a date\n" +
		"• `@taskbot @alice` — someone's full task history\n" +
		"• `@taskbot @alice till 11/08/2024` — someone's tasks up to a date\n" +
		"(French works too: aujourd'hui, hier, jusqu'à.)\n\n" +
		"Commands:\n" +
		"• `/tasks` — list every stored task\n" +
		"• `/task-delete <text>` — delete tasks by exact text\n" +
		fmt.Sprintf("\nWatched channels: %s", strings.Join(cfg.WatchedChannels, ", "))
	postEphemeral(api, cmd, help)
}

func postEphemeral(api *slack.Client, cmd slack.SlashCommand, text string) {
	_, err := api.PostEphemeral(cmd.ChannelID, cmd.UserID, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("Error sending ephemeral message: %v", err)
	}
}
