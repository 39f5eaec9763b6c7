package cfg

type Cfg struct {
	// Telegram configuration
	BotToken       string
	AdminChannelID int64
	AllowedGroupID int64
	TargetGroupURL string

	// Metadata provider configuration
	TMDBAPIKey  string
	TMDBBaseURL string

	// Database configuration
	DBPath string

	// Application configuration
	Port            string
	WorkerCount     int
	CheckInterval   int
	CheckStartDelay int
	CheckBatchSize  int
	MessagesFile    string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
