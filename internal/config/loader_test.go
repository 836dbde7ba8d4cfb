package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sisubot/sisu/internal/config"
)

const minimalConfig = `
telegram:
  token: "123:abc"
  admin_user_id: 42
gemini:
  api_key: "test-key"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("Token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminUserID != 42 {
		t.Errorf("AdminUserID = %d", cfg.Telegram.AdminUserID)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logger.Level)
	}
	if cfg.Database.Path != "storage.db" {
		t.Errorf("default database path = %q", cfg.Database.Path)
	}
	if cfg.Engine.LexiconPath != "lexicon.json" || cfg.Engine.LearnedPath != "learned.json" {
		t.Errorf("default engine paths = %q, %q", cfg.Engine.LexiconPath, cfg.Engine.LearnedPath)
	}
	if cfg.Engine.MaxLedgerEntries != 10000 {
		t.Errorf("default max ledger entries = %d", cfg.Engine.MaxLedgerEntries)
	}
	if cfg.Gemini.ModelName == "" {
		t.Error("default gemini model name is empty")
	}

	task, ok := cfg.Scheduler.Tasks["stats_snapshot"]
	if !ok || !task.Enabled || task.Schedule == "" {
		t.Errorf("stats_snapshot task config = %+v, ok = %v", task, ok)
	}
	if cfg.Messages.FallbackMsg == "" {
		t.Error("default fallback message is empty")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Parallel()

	content := minimalConfig + `
log:
  level: debug
engine:
  lexicon_path: /data/lexicon.json
  max_history_messages: 100
`
	cfg, err := config.LoadConfig(writeConfig(t, content))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logger.Level)
	}
	if cfg.Engine.LexiconPath != "/data/lexicon.json" {
		t.Errorf("lexicon path = %q", cfg.Engine.LexiconPath)
	}
	if cfg.Engine.MaxHistoryMessages != 100 {
		t.Errorf("max history messages = %d", cfg.Engine.MaxHistoryMessages)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BOT_LOG_LEVEL", "warn")

	cfg, err := config.LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Logger.Level != "warn" {
		t.Errorf("log level = %q, want env override warn", cfg.Logger.Level)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing telegram token",
			content: `
telegram:
  admin_user_id: 42
gemini:
  api_key: "test-key"
`,
		},
		{
			name: "missing gemini api key",
			content: `
telegram:
  token: "123:abc"
  admin_user_id: 42
`,
		},
		{
			name:    "bad log level",
			content: minimalConfig + "\nlog:\n  level: loud\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := config.LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("LoadConfig accepted invalid config")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("BOT_TELEGRAM_ADMIN_USER_ID", "42")
	t.Setenv("BOT_GEMINI_API_KEY", "test-key")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig with missing file failed: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("Token from env = %q", cfg.Telegram.Token)
	}
}
