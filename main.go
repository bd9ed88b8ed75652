package main

import (
	"log"

	"github.com/slack-go/slack"
)

func main() {
	cfg := LoadConfig()

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	api := slack.New(
		cfg.SlackBotToken,
		slack.OptionAppLevelToken(cfg.SlackAppToken),
	)

	lang := NewLanguageServiceFromConfig(cfg)

	StartDigestScheduler(cfg, db, api)

	log.Println("Starting Task Bot...")
	if err := StartSlackBot(cfg, db, api, lang); err != nil {
		log.Fatalf("Slack bot error: %v", err)
	}
}
