package config

// RedditCredentials holds the script-app credentials used for posting
type RedditCredentials struct {
	ClientID     string `toml:"client_id" env:"CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"CLIENT_SECRET"`
	Username     string `toml:"username" env:"USERNAME"`
	Password     string `toml:"password" env:"PASSWORD"`
	UserAgent    string `toml:"user_agent" env:"USER_AGENT"`
	Subreddit    string `toml:"subreddit" env:"SUBREDDIT"`
}

// IsValid checks if reddit credentials are fully populated
func (rc RedditCredentials) IsValid() bool {
	return rc.ClientID != "" && rc.ClientSecret != "" && rc.Username != "" && rc.Password != ""
}

// TelegramCredentials holds the bot credentials of the optional channel mirror
type TelegramCredentials struct {
	AppID       int    `toml:"app_id" env:"TELEGRAM_APP_ID"`
	AppHash     string `toml:"app_hash" env:"TELEGRAM_APP_HASH"`
	BotToken    string `toml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	Channel     string `toml:"channel" env:"TELEGRAM_CHANNEL"` // e.g. "@bohemka"
	SessionPath string `toml:"session_path" env:"TELEGRAM_SESSION_PATH"`
}

// IsValid checks if telegram credentials are fully populated
func (tc TelegramCredentials) IsValid() bool {
	return tc.AppID != 0 && tc.AppHash != "" && tc.BotToken != "" && tc.Channel != ""
}

// IsPartial reports a mirror that is configured but missing something
func (tc TelegramCredentials) IsPartial() bool {
	set := tc.AppID != 0 || tc.AppHash != "" || tc.BotToken != "" || tc.Channel != ""
	return set && !tc.IsValid()
}
