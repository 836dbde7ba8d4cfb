// Package tasks implements the bot's scheduled background tasks.
package tasks

import (
	"context"
	"log/slog"

	"github.com/sisubot/sisu/internal/config"
	"github.com/sisubot/sisu/internal/database"
	"github.com/sisubot/sisu/internal/feedback"
	"github.com/sisubot/sisu/internal/profile"
)

// ScheduledTaskFunc is the signature of all scheduled tasks. The context
// provided by the scheduler must be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// TaskDeps contains the dependencies available to scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Ledger   *feedback.Ledger
	Profiles *profile.Tracker
	Config   *config.Config
}
