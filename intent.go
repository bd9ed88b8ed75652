package main

import (
	"regexp"
	"strings"
	"time"
)

type relativeMarker int

const (
	relativeNone relativeMarker = iota
	relativeToday
	relativeYesterday
	relativeTomorrow
)

// Intent is the structured result of parsing one normalized message.
// Never persisted.
type Intent struct {
	MentionedUser string // display name, empty when none
	Date          string // YYYY-MM-DD, empty when no date found
	Till          bool
	Relative      relativeMarker
}

var (
	literalDateRegex = regexp.MustCompile(`(\d{2}[/-]\d{2}[/-]\d{4})`)
	tillDateRegex    = regexp.MustCompile(`(?i)(till|jusqu)\S*\s+(\d{2}[/-]\d{2}[/-]\d{4})`)
	compactDateRegex = regexp.MustCompile(`\b(\d{2})(\d{2})(\d{4})\b`)
	relativeKeywords = map[relativeMarker][]string{
		relativeToday:     {"today", "aujourd'hui", "aujourdhui"},
		relativeYesterday: {"yesterday", "hier"},
		relativeTomorrow:  {"tomorrow", "demain"},
	}
)

// ExtractDate finds a calendar date in the message text and returns it as
// YYYY-MM-DD, or "" when none is found. Precedence: explicit DD/MM/YYYY
// literal, relative keyword, "till DD/MM/YYYY", bare DDMMYYYY run. An
// explicit literal with an impossible day/month (31/02) terminates the scan
// with no date rather than falling through.
func ExtractDate(text string, now time.Time) string {
	if match := literalDateRegex.FindStringSubmatch(text); len(match) > 1 {
		return parseDayMonthYear(match[1])
	}

	switch RelativeMarkerOf(text) {
	case relativeToday:
		return todayISO(now)
	case relativeYesterday:
		return yesterdayISO(now)
	case relativeTomorrow:
		return now.AddDate(0, 0, 1).Format(isoDateLayout)
	}

	if match := tillDateRegex.FindStringSubmatch(text); len(match) > 2 {
		return parseDayMonthYear(match[2])
	}

	if match := compactDateRegex.FindStringSubmatch(text); len(match) > 3 {
		return parseDayMonthYear(match[1] + "/" + match[2] + "/" + match[3])
	}

	return ""
}

// parseDayMonthYear strictly parses DD/MM/YYYY or DD-MM-YYYY; time.Parse
// rejects impossible combinations like 31/02.
func parseDayMonthYear(s string) string {
	s = strings.ReplaceAll(s, "-", "/")
	d, err := time.Parse(reportDateLayout, s)
	if err != nil {
		return ""
	}
	return d.Format(isoDateLayout)
}

// IsTillQuery reports whether the text asks for a range upper bound rather
// than a single date. Substring match, same looseness as RelativeMarkerOf.
// The French form is matched on its "jusqu" stem since normalization strips
// apostrophes and accents.
func IsTillQuery(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "till") || strings.Contains(lower, "jusqu")
}

// RelativeMarkerOf scans for today/yesterday/tomorrow keywords in English
// and French. A word merely containing the keyword also matches; callers
// that need tokenized matching do their own splitting.
func RelativeMarkerOf(text string) relativeMarker {
	lower := strings.ToLower(text)
	for _, marker := range []relativeMarker{relativeToday, relativeYesterday, relativeTomorrow} {
		for _, keyword := range relativeKeywords[marker] {
			if strings.Contains(lower, keyword) {
				return marker
			}
		}
	}
	return relativeNone
}

// FirstMention picks the referenced user a query is about. The platform
// layer passes mentions with the bot itself already excluded.
func FirstMention(mentions []string) string {
	if len(mentions) == 0 {
		return ""
	}
	return mentions[0]
}

// ExtractIntent combines date, range, relative-keyword and mention
// extraction over one normalized message.
func ExtractIntent(text string, mentions []string, now time.Time) Intent {
	return Intent{
		MentionedUser: FirstMention(mentions),
		Date:          ExtractDate(text, now),
		Till:          IsTillQuery(text),
		Relative:      RelativeMarkerOf(text),
	}
}
