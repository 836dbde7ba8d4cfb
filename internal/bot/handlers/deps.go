// Package handlers contains Telegram bot command, message and callback
// handlers, along with their registration logic and middleware.
package handlers

import (
	"log/slog"

	"github.com/sisubot/sisu/internal/config"
	"github.com/sisubot/sisu/internal/database"
	"github.com/sisubot/sisu/internal/engine"
	"github.com/sisubot/sisu/internal/feedback"
	"github.com/sisubot/sisu/internal/gemini"
	"github.com/sisubot/sisu/internal/learned"
)

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger       *slog.Logger
	Config       *config.Config
	Store        database.Store
	Engine       *engine.Engine
	Ledger       *feedback.Ledger
	Learned      *learned.Store
	GeminiClient gemini.Client
}
