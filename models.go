package main

import "time"

type Task struct {
	ID        int64
	Content   string
	Author    string // display name, used as the query key
	AuthorID  string // Slack user ID (immutable)
	Channel   string // channel name, not ID
	Language  string // ISO-ish code or "unknown", never empty
	CreatedAt time.Time
}

// TaskRow is the undated row shape returned by multi-user queries.
type TaskRow struct {
	Content string
	Author  string
	Channel string
}

// AuthorTaskRow is the date-qualified row shape returned by single-user
// queries. Date is the store-side date(created_at) in YYYY-MM-DD.
type AuthorTaskRow struct {
	Content string
	Channel string
	Date    string
}

// TaskEntry is one report line. Date is already formatted DD/MM/YYYY,
// or empty when the query shape carries no date.
type TaskEntry struct {
	Content string
	Date    string
}

type ChannelTasks struct {
	Channel string
	Tasks   []TaskEntry
}

type UserTasks struct {
	Author   string
	Channels []ChannelTasks
}

const (
	isoDateLayout    = "2006-01-02"
	reportDateLayout = "02/01/2006"
)

// FormatReportDate converts a YYYY-MM-DD store date to DD/MM/YYYY for
// report output. Unparseable input passes through unchanged.
func FormatReportDate(isoDate string) string {
	d, err := time.Parse(isoDateLayout, isoDate)
	if err != nil {
		return isoDate
	}
	return d.Format(reportDateLayout)
}

func todayISO(now time.Time) string {
	return now.Format(isoDateLayout)
}

func yesterdayISO(now time.Time) string {
	return now.AddDate(0, 0, -1).Format(isoDateLayout)
}
