package main

import (
	"database/sql"
	"fmt"
	"strings"
)

// GroupRowsByAuthor groups undated multi-user rows into an author -> channel
// -> tasks structure. Slices instead of maps so the report follows the
// store's retrieval order exactly.
func GroupRowsByAuthor(rows []TaskRow) []UserTasks {
	var users []UserTasks
	userIndex := make(map[string]int)

	for _, row := range rows {
		i, ok := userIndex[row.Author]
		if !ok {
			users = append(users, UserTasks{Author: row.Author})
			i = len(users) - 1
			userIndex[row.Author] = i
		}
		users[i].Channels = appendChannelTask(users[i].Channels, row.Channel, TaskEntry{Content: row.Content})
	}
	return users
}

// GroupRowsByChannel groups one author's date-qualified rows by channel,
// formatting each store date to DD/MM/YYYY on the way through.
func GroupRowsByChannel(rows []AuthorTaskRow) []ChannelTasks {
	var channels []ChannelTasks
	for _, row := range rows {
		channels = appendChannelTask(channels, row.Channel, TaskEntry{
			Content: row.Content,
			Date:    FormatReportDate(row.Date),
		})
	}
	return channels
}

func appendChannelTask(channels []ChannelTasks, channel string, entry TaskEntry) []ChannelTasks {
	for i := range channels {
		if channels[i].Channel == channel {
			channels[i].Tasks = append(channels[i].Tasks, entry)
			return channels
		}
	}
	return append(channels, ChannelTasks{Channel: channel, Tasks: []TaskEntry{entry}})
}

// BuildMultiUserSummary renders the channel-grouped tasks of every author,
// one "User: <name>" section per author, in iteration order.
func BuildMultiUserSummary(users []UserTasks, includeDate bool) string {
	parts := make([]string, 0, len(users))
	for _, user := range users {
		parts = append(parts, formatTaskSummary(user.Author, user.Channels, includeDate))
	}
	return strings.Join(parts, "\n")
}

// BuildSingleUserSummary renders one author's channel-grouped tasks without
// the author header; the caller names the author in its surrounding sentence.
func BuildSingleUserSummary(channels []ChannelTasks, includeDate bool) string {
	return strings.Join(channelLines(channels, includeDate), "\n")
}

func formatTaskSummary(author string, channels []ChannelTasks, includeDate bool) string {
	header := fmt.Sprintf("\nUser: %s\n", author)
	return header + strings.Join(channelLines(channels, includeDate), "\n")
}

func channelLines(channels []ChannelTasks, includeDate bool) []string {
	var lines []string
	for _, ch := range channels {
		lines = append(lines, fmt.Sprintf("\n%s:", ch.Channel))
		for _, task := range ch.Tasks {
			if includeDate && task.Date != "" {
				lines = append(lines, fmt.Sprintf("• [%s] %s", task.Date, strings.TrimSpace(task.Content)))
			} else {
				lines = append(lines, fmt.Sprintf("• %s", strings.TrimSpace(task.Content)))
			}
		}
	}
	return lines
}

// ChunkMessage splits content into contiguous pieces of at most max runes.
// No word-boundary awareness; concatenating the pieces restores the input.
func ChunkMessage(content string, max int) []string {
	if max < 1 || content == "" {
		return nil
	}
	runes := []rune(content)
	var chunks []string
	for start := 0; start < len(runes); start += max {
		end := start + max
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// ExecuteQuery runs a resolved report action against the store and renders
// the full reply text, including the fixed not-found message when the
// matching set is empty.
func ExecuteQuery(db *sql.DB, action Action) (string, error) {
	switch action.Kind {
	case ActionAllTasksOnDate, ActionAllTasksToday, ActionAllTasksYesterday:
		rows, err := GetTasksByDate(db, action.Date)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return fmt.Sprintf("No tasks found for any user on %s.", allUsersDateDesc(action)), nil
		}
		return BuildMultiUserSummary(GroupRowsByAuthor(rows), false), nil

	case ActionAllTasksTillDate:
		rows, err := GetTasksTillDate(db, action.Date)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return fmt.Sprintf("No tasks found for any user till %s.", FormatReportDate(action.Date)), nil
		}
		return BuildMultiUserSummary(GroupRowsByAuthor(rows), true), nil

	case ActionUserTasksOnDate, ActionUserTasksToday, ActionUserTasksYesterday:
		rows, err := GetTasksByAuthorAndDate(db, action.User, action.Date)
		if err != nil {
			return "", err
		}
		return renderUserReport(action.User, rows, userDateDesc(action), false), nil

	case ActionUserTasksTillDate:
		rows, err := GetTasksByAuthorTillDate(db, action.User, action.Date)
		if err != nil {
			return "", err
		}
		return renderUserReport(action.User, rows, FormatReportDate(action.Date), true), nil

	case ActionUserTaskHistory:
		rows, err := GetTasksByAuthor(db, action.User)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return fmt.Sprintf("No tasks found for %s.", action.User), nil
		}
		summary := BuildSingleUserSummary(GroupRowsByChannel(rows), true)
		return fmt.Sprintf("Here is the full task history for %s:\n%s", action.User, summary), nil
	}

	return "", fmt.Errorf("not a report action: %d", action.Kind)
}

func renderUserReport(author string, rows []AuthorTaskRow, dateDesc string, till bool) string {
	joiner := "on"
	if till {
		joiner = "till"
	}
	if len(rows) == 0 {
		return fmt.Sprintf("No tasks found for %s %s %s.", author, joiner, dateDesc)
	}
	summary := BuildSingleUserSummary(GroupRowsByChannel(rows), true)
	return fmt.Sprintf("Here is the task summary for %s %s %s:\n%s", author, joiner, dateDesc, summary)
}

func allUsersDateDesc(action Action) string {
	switch action.Kind {
	case ActionAllTasksToday:
		return "today"
	case ActionAllTasksYesterday:
		return "yesterday"
	}
	return FormatReportDate(action.Date)
}

func userDateDesc(action Action) string {
	switch action.Kind {
	case ActionUserTasksToday:
		return "today"
	case ActionUserTasksYesterday:
		return "yesterday"
	}
	return FormatReportDate(action.Date)
}
