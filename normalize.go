package main

import (
	"regexp"
	"strings"
)

var (
	userMentionRegex    = regexp.MustCompile(`<@[A-Z0-9]+(\|[^>]*)?>`)
	specialMentionRegex = regexp.MustCompile(`<!(here|channel|everyone)(\|[^>]*)?>|<!subteam\^[A-Z0-9]+(\|[^>]*)?>`)
	unwantedCharRegex   = regexp.MustCompile(`[^a-zA-Z0-9/\-\s]`)
	whitespaceRegex     = regexp.MustCompile(`\s+`)
)

// NormalizeContent strips Slack mention markup and unwanted characters from
// raw message text. An empty result means the message carries nothing worth
// storing or interpreting; callers drop it.
func NormalizeContent(raw string) string {
	content := userMentionRegex.ReplaceAllString(raw, "")
	content = specialMentionRegex.ReplaceAllString(content, "")
	content = unwantedCharRegex.ReplaceAllString(content, "")
	content = whitespaceRegex.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}
