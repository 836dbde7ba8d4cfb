package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type reactionHandler struct {
	deps HandlerDeps
}

// NewReactionHandler creates the callback-query handler that routes
// like/dislike inline-button presses back into the feedback ledger.
// Callback data format: "react:+:<token>" or "react:-:<token>".
func NewReactionHandler(deps HandlerDeps) bot.HandlerFunc {
	return reactionHandler{deps}.Handle
}

func (h reactionHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "reaction")

	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	parts := strings.SplitN(cq.Data, ":", 3)
	if len(parts) != 3 || parts[0] != "react" || (parts[1] != "+" && parts[1] != "-") {
		log.WarnContext(ctx, "Malformed reaction callback data", "data", cq.Data)
		h.answer(ctx, b, cq.ID, "")
		return
	}
	positive := parts[1] == "+"
	token := parts[2]

	if !deps.Engine.React(token, cq.From.ID, positive) {
		// Token issued before the last restart; the reverse table is
		// in-memory only.
		log.InfoContext(ctx, "Reaction for unknown token ignored", "user_id", cq.From.ID)
		h.answer(ctx, b, cq.ID, "Эта кнопка устарела.")
		return
	}

	log.InfoContext(ctx, "Reaction recorded", "user_id", cq.From.ID, "positive", positive)
	if positive {
		h.answer(ctx, b, cq.ID, "Спасибо за лайк!")
	} else {
		h.answer(ctx, b, cq.ID, "Учту.")
	}
}

func (h reactionHandler) answer(ctx context.Context, b *bot.Bot, callbackID, text string) {
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	}); err != nil {
		h.deps.Logger.WarnContext(ctx, "Failed to answer callback query", "error", err)
	}
}
