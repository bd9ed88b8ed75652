package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigYAMLAndDefaults(t *testing.T) {
	path := writeConfigFile(t, `
slack_bot_token: xoxb-test
slack_app_token: xapp-test
watched_channels:
  - general
  - back
`)
	t.Setenv("CONFIG_PATH", path)

	cfg := LoadConfig()
	if cfg.SlackBotToken != "xoxb-test" || cfg.SlackAppToken != "xapp-test" {
		t.Fatalf("tokens not loaded: %+v", cfg)
	}
	if len(cfg.WatchedChannels) != 2 || cfg.WatchedChannels[0] != "general" {
		t.Fatalf("watched channels not loaded: %v", cfg.WatchedChannels)
	}
	if cfg.DBPath != "./taskbot.db" {
		t.Fatalf("db_path default missing: %q", cfg.DBPath)
	}
	if cfg.MaxMessageLength != 2000 {
		t.Fatalf("max_message_length default missing: %d", cfg.MaxMessageLength)
	}
	if cfg.CommandPrefix != "!" {
		t.Fatalf("command_prefix default missing: %q", cfg.CommandPrefix)
	}
	if cfg.LLMProvider != "anthropic" {
		t.Fatalf("llm_provider default missing: %q", cfg.LLMProvider)
	}
	if cfg.Location == nil {
		t.Fatal("location should default to local time")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
slack_bot_token: xoxb-test
slack_app_token: xapp-test
db_path: ./from-yaml.db
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DB_PATH", "./from-env.db")
	t.Setenv("MAX_MESSAGE_LENGTH", "500")
	t.Setenv("WATCHED_CHANNELS", "alpha, beta ,,gamma")

	cfg := LoadConfig()
	if cfg.DBPath != "./from-env.db" {
		t.Fatalf("env should override yaml, got %q", cfg.DBPath)
	}
	if cfg.MaxMessageLength != 500 {
		t.Fatalf("int env override failed: %d", cfg.MaxMessageLength)
	}
	if len(cfg.WatchedChannels) != 3 || cfg.WatchedChannels[2] != "gamma" {
		t.Fatalf("comma list parsing failed: %v", cfg.WatchedChannels)
	}
}

func TestIsWatchedChannel(t *testing.T) {
	cfg := Config{WatchedChannels: []string{"General", " back "}}

	if !cfg.IsWatchedChannel("general") || !cfg.IsWatchedChannel("BACK") {
		t.Fatal("watched-channel match should be case-insensitive and trimmed")
	}
	if cfg.IsWatchedChannel("front") {
		t.Fatal("unexpected watched channel")
	}
}

func TestLanguageConfigured(t *testing.T) {
	if (Config{LLMProvider: "anthropic"}).LanguageConfigured() {
		t.Fatal("no key should mean not configured")
	}
	if !(Config{LLMProvider: "anthropic", AnthropicAPIKey: "k"}).LanguageConfigured() {
		t.Fatal("anthropic key should configure the service")
	}
	if !(Config{LLMProvider: "openai", OpenAIAPIKey: "k"}).LanguageConfigured() {
		t.Fatal("openai key should configure the service")
	}
	if (Config{LLMProvider: "openai", AnthropicAPIKey: "k"}).LanguageConfigured() {
		t.Fatal("key for the wrong provider should not count")
	}
}
