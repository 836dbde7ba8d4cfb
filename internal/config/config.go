// Package config loads, defaults and validates the application
// configuration from config.yaml and BOT_* environment variables.
package config

import (
	"github.com/go-telegram/bot/models"
)

// Config is the root application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot token and admin identity. BotInfo is filled
// at startup from GetMe and is not read from the config file.
type TelegramConfig struct {
	Token       string `mapstructure:"token"         validate:"required"`
	AdminUserID int64  `mapstructure:"admin_user_id" validate:"required,gt=0"`

	BotInfo *models.User `mapstructure:"-"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// GeminiConfig configures the generative fallback reply path.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"             validate:"required"`
	ModelName         string  `mapstructure:"model_name"          validate:"required"`
	Temperature       float32 `mapstructure:"temperature"         validate:"min=0,max=2"`
	SystemInstruction string  `mapstructure:"system_instruction"`
	MaxRetries        int     `mapstructure:"max_retries"         validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=300"`
}

// EngineConfig configures the response selection engine.
type EngineConfig struct {
	LexiconPath        string `mapstructure:"lexicon_path"         validate:"required"`
	LearnedPath        string `mapstructure:"learned_path"         validate:"required"`
	MaxLedgerEntries   int    `mapstructure:"max_ledger_entries"   validate:"min=0"`
	MaxHistoryMessages int    `mapstructure:"max_history_messages" validate:"min=1,max=500"`
}

// TaskConfig enables one scheduled task and sets its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// MessagesConfig holds the user-visible canned host messages.
type MessagesConfig struct {
	Welcome              string `mapstructure:"welcome"`
	Help                 string `mapstructure:"help"`
	ErrorGeneralMsg      string `mapstructure:"error_general"`
	ErrorUnauthorizedMsg string `mapstructure:"error_unauthorized"`
	FallbackMsg          string `mapstructure:"fallback"`
}
