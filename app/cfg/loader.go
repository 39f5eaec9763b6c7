package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Telegram configuration
	BotToken       string `long:"bot-token" env:"BOT_TOKEN" description:"Telegram bot token (required)" required:"true"`
	AdminChannelID int64  `long:"admin-channel-id" env:"ADMIN_CHANNEL_ID" description:"Telegram channel for admin request cards, e.g. -100123456789" required:"true"`
	AllowedGroupID int64  `long:"allowed-group-id" env:"ALLOWED_GROUP_ID" description:"Telegram group whose messages are treated as search queries" required:"true"`
	TargetGroupURL string `long:"target-group-url" env:"TARGET_GROUP_LINK" default:"https://t.me/your_file_group" description:"Invite link to the file group offered on available titles"`

	// Metadata provider configuration
	TMDBAPIKey  string `long:"tmdb-api-key" env:"TMDB_API_KEY" description:"TMDB API key (required)" required:"true"`
	TMDBBaseURL string `long:"tmdb-base-url" env:"TMDB_BASE_URL" default:"https://api.themoviedb.org/3" description:"TMDB API base URL"`

	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./reelbot.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount     int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for task processing"`
	CheckInterval   int    `long:"check-interval" env:"CHECK_INTERVAL" default:"600" description:"Pending request re-check interval in seconds"`
	CheckStartDelay int    `long:"check-start-delay" env:"CHECK_START_DELAY" default:"10" description:"Delay before the first pending request re-check in seconds"`
	CheckBatchSize  int    `long:"check-batch-size" env:"CHECK_BATCH_SIZE" default:"50" description:"Maximum pending requests examined per re-check run"`
	MessagesFile    string `long:"messages-file" env:"MESSAGES_FILE" description:"Optional YAML file overriding user-facing message templates"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"ReelBot/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		BotToken:        raw.BotToken,
		AdminChannelID:  raw.AdminChannelID,
		AllowedGroupID:  raw.AllowedGroupID,
		TargetGroupURL:  raw.TargetGroupURL,
		TMDBAPIKey:      raw.TMDBAPIKey,
		TMDBBaseURL:     raw.TMDBBaseURL,
		DBPath:          raw.DBPath,
		Port:            raw.Port,
		WorkerCount:     raw.WorkerCount,
		CheckInterval:   raw.CheckInterval,
		CheckStartDelay: raw.CheckStartDelay,
		CheckBatchSize:  raw.CheckBatchSize,
		MessagesFile:    raw.MessagesFile,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
