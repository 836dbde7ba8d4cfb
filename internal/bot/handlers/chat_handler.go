package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/sisubot/sisu/internal/database"
	"github.com/sisubot/sisu/internal/engine"
)

const (
	aiProcessingTimeout = 2 * time.Minute
	sendMessageTimeout  = 10 * time.Second
	dbSaveTimeout       = 5 * time.Second
)

type chatHandler struct {
	deps HandlerDeps
}

// NewChatHandler creates the default handler for incoming chat messages. It
// feeds every message through the response selection engine and falls back
// to the generative reply path when the engine has nothing to say and the
// bot is being addressed.
func NewChatHandler(deps HandlerDeps) bot.HandlerFunc {
	return chatHandler{deps}.Handle
}

func (h chatHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "chat")

	msg := update.Message
	if msg == nil || msg.From == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}
	if msg.From.IsBot {
		return
	}

	chatID := msg.Chat.ID
	botInfo := deps.Config.Telegram.BotInfo

	engineMsg := engine.Message{
		ChatID: chatID,
		UserID: msg.From.ID,
		Text:   msg.Text,
	}
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil &&
		botInfo != nil && msg.ReplyToMessage.From.ID == botInfo.ID {
		engineMsg.IsReplyToBot = true
		engineMsg.RepliedText = msg.ReplyToMessage.Text
	}

	saveMessage(ctx, deps, &database.Message{
		ChatID:    chatID,
		UserID:    msg.From.ID,
		Content:   msg.Text,
		Timestamp: time.Unix(int64(msg.Date), 0),
	})

	action := deps.Engine.HandleMessage(engineMsg)

	switch action.Kind {
	case engine.ActionRespond:
		h.sendEngineResponse(ctx, b, chatID, msg.ID, action)
	case engine.ActionAcknowledge:
		h.sendPlainReply(ctx, b, chatID, msg.ID, action.Text)
	case engine.ActionNone:
		if h.isAddressed(msg, engineMsg.IsReplyToBot) {
			h.generateFallback(ctx, b, chatID, msg.ID)
		} else {
			log.DebugContext(ctx, "No engine action, bot not addressed", "chat_id", chatID)
		}
	}
}

// isAddressed reports whether the bot should answer even without a trigger:
// private chats, @mentions and replies to the bot.
func (h chatHandler) isAddressed(msg *models.Message, isReplyToBot bool) bool {
	if msg.Chat.Type == models.ChatTypePrivate {
		return true
	}
	if isReplyToBot {
		return true
	}
	botInfo := h.deps.Config.Telegram.BotInfo
	if botInfo == nil || botInfo.Username == "" {
		return false
	}
	return strings.Contains(strings.ToLower(msg.Text), "@"+strings.ToLower(botInfo.Username))
}

func (h chatHandler) sendEngineResponse(ctx context.Context, b *bot.Bot, chatID int64, replyTo int, action engine.Action) {
	deps := h.deps
	log := deps.Logger.With("handler", "chat")

	token := deps.Engine.ReactionToken(action.Trigger, action.Text)
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			{Text: "👍", CallbackData: "react:+:" + token},
			{Text: "👎", CallbackData: "react:-:" + token},
		}},
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	sent, err := b.SendMessage(sendCtx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            action.Text,
		ReplyParameters: &models.ReplyParameters{MessageID: replyTo},
		ReplyMarkup:     keyboard,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send engine response", "error", err, "chat_id", chatID)
		return
	}

	log.InfoContext(ctx, "Sent engine response",
		"chat_id", chatID, "message_id", sent.ID, "trigger", action.Trigger)
	h.saveBotReply(ctx, chatID, action.Text)
}

func (h chatHandler) sendPlainReply(ctx context.Context, b *bot.Bot, chatID int64, replyTo int, text string) {
	deps := h.deps
	log := deps.Logger.With("handler", "chat")

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	if _, err := b.SendMessage(sendCtx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            text,
		ReplyParameters: &models.ReplyParameters{MessageID: replyTo},
	}); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
		return
	}
	h.saveBotReply(ctx, chatID, text)
}

// generateFallback asks Gemini for a reply over recent chat history, with
// the chat's mood injected as a tone hint.
func (h chatHandler) generateFallback(ctx context.Context, b *bot.Bot, chatID int64, replyTo int) {
	deps := h.deps
	log := deps.Logger.With("handler", "chat")
	botInfo := deps.Config.Telegram.BotInfo

	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

	history, err := deps.Store.GetRecentMessagesInChat(ctx, chatID, deps.Config.Engine.MaxHistoryMessages)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch message history", "error", err, "chat_id", chatID)
		history = nil
	}

	var botID int64
	var botUsername string
	if botInfo != nil {
		botID = botInfo.ID
		botUsername = botInfo.Username
	}

	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	defer cancel()
	reply, err := deps.GeminiClient.GenerateReply(aiCtx, history, deps.Engine.ToneModifier(chatID), botID, botUsername)
	if err != nil {
		log.ErrorContext(ctx, "Fallback reply generation failed", "error", err, "chat_id", chatID)
		reply = deps.Config.Messages.FallbackMsg
	}
	if reply == "" {
		reply = deps.Config.Messages.FallbackMsg
	}

	h.sendPlainReply(ctx, b, chatID, replyTo, reply)
}

func (h chatHandler) saveBotReply(ctx context.Context, chatID int64, text string) {
	botInfo := h.deps.Config.Telegram.BotInfo
	if botInfo == nil || botInfo.ID == 0 {
		return
	}
	saveMessage(ctx, h.deps, &database.Message{
		ChatID:    chatID,
		UserID:    botInfo.ID,
		Content:   text,
		Timestamp: time.Now().UTC(),
	})
}

// saveMessage persists a message, logging failures without interrupting the
// handler.
func saveMessage(ctx context.Context, deps HandlerDeps, msg *database.Message) {
	dbCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
	defer cancel()
	if err := deps.Store.SaveMessage(dbCtx, msg); err != nil {
		deps.Logger.WarnContext(ctx, "Failed to save message", "error", err, "chat_id", msg.ChatID)
	}
}
