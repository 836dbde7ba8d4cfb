package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const statsTopCount = 5

// NewStatsHandler returns a handler for the admin-only /sisu_stats command.
// It reports the sizes of the feedback ledger and the learned store, and the
// best and worst rated responses.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil || update.Message.From == nil {
		return
	}

	log.InfoContext(ctx, "Handling /sisu_stats command", "user_id", update.Message.From.ID)

	snapshot := h.deps.Ledger.Snapshot()

	type rated struct {
		response string
		likes    int
		dislikes int
	}
	var all []rated
	for response, entry := range snapshot {
		if entry.Positive+entry.Negative == 0 {
			continue
		}
		all = append(all, rated{response: response, likes: entry.Positive, dislikes: entry.Negative})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Ответов в статистике: %d\n", len(snapshot))
	fmt.Fprintf(&sb, "Выученных триггеров: %d\n", h.deps.Learned.Len())

	if len(all) > 0 {
		sort.Slice(all, func(i, j int) bool {
			if all[i].likes != all[j].likes {
				return all[i].likes > all[j].likes
			}
			return all[i].response < all[j].response
		})
		sb.WriteString("\nЛучшие ответы:\n")
		for i, r := range all {
			if i >= statsTopCount {
				break
			}
			fmt.Fprintf(&sb, "  👍 %d / 👎 %d — %s\n", r.likes, r.dislikes, truncate(r.response, 60))
		}

		sort.Slice(all, func(i, j int) bool {
			if all[i].dislikes != all[j].dislikes {
				return all[i].dislikes > all[j].dislikes
			}
			return all[i].response < all[j].response
		})
		sb.WriteString("\nХудшие ответы:\n")
		for i, r := range all {
			if i >= statsTopCount {
				break
			}
			fmt.Fprintf(&sb, "  👍 %d / 👎 %d — %s\n", r.likes, r.dislikes, truncate(r.response, 60))
		}
	}

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   sb.String(),
	}); err != nil {
		log.ErrorContext(ctx, "Failed to send stats message", "error", err)
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
