package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// BuildDailyDigest renders the all-users summary for the given date, or an
// empty string when nothing was logged.
func BuildDailyDigest(db *sql.DB, date string) (string, error) {
	rows, err := GetTasksByDate(db, date)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	summary := BuildMultiUserSummary(GroupRowsByAuthor(rows), false)
	return fmt.Sprintf("Daily task digest for %s:\n%s", FormatReportDate(date), summary), nil
}

// StartDigestScheduler posts the daily digest to the report channel on a
// cron schedule. The schedule is a standard 5-field cron expression
// (minute hour day-of-month month day-of-week), e.g. "0 18 * * 1-5" for
// weekday evenings. Disabled when digest_schedule is not set.
func StartDigestScheduler(cfg Config, db *sql.DB, api *slack.Client) {
	schedule := strings.TrimSpace(cfg.DigestSchedule)
	if schedule == "" {
		log.Println("Daily digest disabled (digest_schedule not set)")
		return
	}
	if cfg.ReportChannelID == "" {
		log.Println("Daily digest disabled: report_channel_id not set")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid digest_schedule '%s': %v, digest disabled", schedule, err)
		return
	}

	log.Printf("Daily digest scheduled (cron: %s) to channel %s", schedule, cfg.ReportChannelID)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next digest at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			now = time.Now().In(cfg.Location)
			digest, err := BuildDailyDigest(db, todayISO(now))
			if err != nil {
				log.Printf("Digest build error: %v", err)
				continue
			}
			if digest == "" {
				log.Printf("Digest skipped: no tasks logged on %s", todayISO(now))
				continue
			}

			sender := slackSender{api: api}
			if err := SendChunked(sender, cfg.ReportChannelID, digest, cfg.MaxMessageLength); err != nil {
				log.Printf("Digest post error: %v", err)
			}
		}
	}()
}
