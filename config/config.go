package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type SourceType = string

var (
	Web = SourceType("web")
	RSS = SourceType("rss")
)

type FetchMode = string

var (
	HTTP    = FetchMode("http")
	Browser = FetchMode("browser")
)

const (
	DefaultSourceURL  = "https://www.bohemians.cz"
	DefaultSubreddit  = "BohemiansPraha"
	DefaultUserAgent  = "go:bohemka-bot:v0.2 (by u/tomiob)"
	DefaultTimeFormat = "2006-01-02T15:04:05"
	DefaultWindow     = 2 * time.Hour
)

// ErrInvalid is returned by Validate for unusable configurations
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Source      SourceConfig        `toml:"source"`
	Filter      Filter              `toml:"filter"`
	Reddit      RedditCredentials   `toml:"reddit"`
	Telegram    TelegramCredentials `toml:"telegram"`
	DryRun      bool                `toml:"dry_run" env:"NOOP"`
	HistoryPath string              `toml:"history_path" env:"HISTORY_PATH"` // Empty disables the submission ledger
	LogLevel    string              `toml:"log_level" env:"LOG_LEVEL"`
}

type SourceConfig struct {
	URL      string        `toml:"url" env:"SOURCE_URL"`
	FeedURL  string        `toml:"feed_url" env:"FEED_URL"` // Only used by the rss source type
	T        SourceType    `toml:"type" env:"SOURCE_TYPE"`
	Fetch    FetchMode     `toml:"fetch" env:"FETCH_MODE"`
	Timeout  time.Duration `toml:"timeout" env:"FETCH_TIMEOUT"`
	Timezone string        `toml:"timezone" env:"SOURCE_TIMEZONE"` // IANA name, empty means process local time
	Layout   Layout        `toml:"layout"`
}

// Layout describes where article fields live in the page markup
type Layout struct {
	Article    string `toml:"article"`     // Selector matching one node per article
	Title      string `toml:"title"`       // Heading selector inside the article node
	Time       string `toml:"time"`        // Time node selector inside the article node
	TimeAttr   string `toml:"time_attr"`   // Attribute holding the publish timestamp
	TimeFormat string `toml:"time_format"` // Go reference layout of the timestamp
	LinkAttr   string `toml:"link_attr"`   // Attribute of the article's parent element holding the relative path
}

// Filter decides which parsed articles are posted
type Filter struct {
	Window          time.Duration `toml:"window" env:"RECENCY_WINDOW"` // Articles newer than now-Window are new
	MinWords        int           `toml:"min_words"`                   // Minimum title word count (0 = no limit)
	ExcludePatterns []string      `toml:"exclude_patterns"`            // Regex patterns matched against titles
}

// Location returns the time zone article timestamps are interpreted in
func (s SourceConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}

// Load builds the configuration from defaults, an optional TOML file,
// dotenv files and finally the process environment
func Load(path string) (Config, error) {
	conf := Default()

	if path != "" {
		var err error
		conf, err = Read(path)
		if err != nil {
			return conf, err
		}
	}

	if err := loadEnvFiles(); err != nil {
		return conf, err
	}
	ApplyEnv(&conf)

	return conf, nil
}

func Read(path string) (Config, error) {
	conf := Default()
	dat, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	_, err = toml.Decode(string(dat), &conf)
	if err != nil {
		return conf, fmt.Errorf("failed to decode config at %s with %w", path, err)
	}
	slog.Debug("config read", "at", path)
	return conf, nil
}

func Default() Config {
	return Config{
		Source: SourceConfig{
			URL:     DefaultSourceURL,
			T:       Web,
			Fetch:   HTTP,
			Timeout: 30 * time.Second,
			Layout: Layout{
				Article:    "article.article",
				Title:      "h2",
				Time:       "time",
				TimeAttr:   "datetime",
				TimeFormat: DefaultTimeFormat,
				LinkAttr:   "href",
			},
		},
		Filter: Filter{
			Window: DefaultWindow,
		},
		Reddit: RedditCredentials{
			UserAgent: DefaultUserAgent,
			Subreddit: DefaultSubreddit,
		},
		LogLevel: "info",
	}
}

// Validate reports configuration problems before any network call is made
func (c Config) Validate() error {
	var errs []error

	if c.Source.URL == "" {
		errs = append(errs, errors.New("source url is empty"))
	}
	switch c.Source.T {
	case Web:
	case RSS:
		if c.Source.FeedURL == "" {
			errs = append(errs, errors.New("feed url is required for the rss source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source type: %q", c.Source.T))
	}
	switch c.Source.Fetch {
	case HTTP, Browser:
	default:
		errs = append(errs, fmt.Errorf("unknown fetch mode: %q", c.Source.Fetch))
	}
	if _, err := c.Source.Location(); err != nil {
		errs = append(errs, fmt.Errorf("bad source timezone: %w", err))
	}
	if c.Filter.Window <= 0 {
		errs = append(errs, fmt.Errorf("recency window must be positive, got %s", c.Filter.Window))
	}
	if c.Reddit.Subreddit == "" {
		errs = append(errs, errors.New("subreddit is empty"))
	}
	if !c.DryRun && !c.Reddit.IsValid() {
		errs = append(errs, errors.New("reddit client id, client secret, username and password are required unless NOOP is set"))
	}
	if c.Telegram.IsPartial() {
		errs = append(errs, errors.New("telegram mirror needs app id, app hash, bot token and channel"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadEnvFiles loads ENV_FILE if set, otherwise .env when present.
// Variables already in the environment are never overridden.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields tagged with `env` by non-empty environment variables
func ApplyEnv(conf *Config) {
	applyEnvToStruct(reflect.ValueOf(conf).Elem())
}

func applyEnvToStruct(v reflect.Value) {
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			applyEnvToStruct(field)
			continue
		}

		name := t.Field(i).Tag.Get("env")
		if name == "" {
			continue
		}
		val := os.Getenv(name)
		if val == "" {
			continue
		}
		if err := setField(field, val); err != nil {
			slog.Warn("ignoring malformed environment variable", "name", name, "error", err)
		}
	}
}

func setField(field reflect.Value, val string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Bool:
		field.SetBool(IsTruthy(val))
	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(val)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}

// IsTruthy treats any non-empty value as true except the usual spellings of false
func IsTruthy(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}
