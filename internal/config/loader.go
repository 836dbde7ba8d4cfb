package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration in three layers:
// defaults, then the YAML file at path, then BOT_* environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", true)

	// Empty defaults register the keys with viper so BOT_* environment
	// variables are honored even without a config file. Validation still
	// rejects empty values.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_user_id", 0)
	v.SetDefault("gemini.api_key", "")

	v.SetDefault("database.path", "storage.db")

	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 1.0)
	v.SetDefault("gemini.max_retries", 2)
	v.SetDefault("gemini.retry_delay_seconds", 5)
	v.SetDefault("gemini.system_instruction",
		"You are Sisu, a sharp-tongued but good-natured chat companion. Keep replies short and conversational.")

	v.SetDefault("engine.lexicon_path", "lexicon.json")
	v.SetDefault("engine.learned_path", "learned.json")
	v.SetDefault("engine.max_ledger_entries", 10000)
	v.SetDefault("engine.max_history_messages", 50)

	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", "0 0 4 * * *")
	v.SetDefault("scheduler.tasks.stats_snapshot.enabled", true)
	v.SetDefault("scheduler.tasks.stats_snapshot.schedule", "0 */15 * * * *")

	v.SetDefault("messages.welcome", "Привет! Я Сису. Пиши в чат, я отвечу.")
	v.SetDefault("messages.help", "Просто пиши в чат. Отвечай на мои сообщения, чтобы научить меня новому, или ставь 👍/👎 под ответами.")
	v.SetDefault("messages.error_general", "Что-то пошло не так. Попробуй ещё раз позже.")
	v.SetDefault("messages.error_unauthorized", "Эта команда только для администратора.")
	v.SetDefault("messages.fallback", "Я пока не знаю, что на это ответить.")
}
