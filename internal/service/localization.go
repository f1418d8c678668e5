package service

import "strings"

const (
	locRateLimited           = "chat-manager-rate-limited"
	locRateLimitAdminAlert   = "chat-manager-rate-limit-admin-announcement"
	locEmptyMessage          = "chat-manager-empty-message"
	locMaxLengthExceeded     = "chat-manager-max-message-length-exceeded-message"
	locOOCDisabled           = "chat-manager-ooc-chat-disabled-message"
	locLOOCDisabled          = "chat-manager-looc-chat-disabled-message"
	locUnknownChannel        = "chat-manager-unknown-channel"
	locNoEntity              = "chat-manager-no-entity"
	locDead                  = "chat-manager-dead"
	locDeadChannelDenied     = "chat-manager-dead-channel-denied"
	locAdminOnly             = "chat-manager-admin-only"
	locNoTarget              = "chat-manager-no-target"
	locNoRadio               = "chat-manager-no-radio-access"
	locWhisperUnknownSpeaker = "chat-manager-entity-whisper-unknown-name"
	locHistoryCleared        = "chat-manager-history-cleared"
)

var englishStrings = map[string]string{
	locRateLimited:           "You are sending messages too quickly!",
	locRateLimitAdminAlert:   "Player {$player} breached chat rate limits. Watch them!",
	locEmptyMessage:          "You can't send an empty message.",
	locMaxLengthExceeded:     "Your message exceeded {$limit} character limit",
	locOOCDisabled:           "OOC chat is currently disabled.",
	locLOOCDisabled:          "LOOC chat is currently disabled.",
	locUnknownChannel:        "Unknown chat channel.",
	locNoEntity:              "You need a body to use this channel.",
	locDead:                  "You can't speak while dead.",
	locDeadChannelDenied:     "Only the dead can use this channel.",
	locAdminOnly:             "Only administrators can use this channel.",
	locNoTarget:              "You need to choose who to talk to.",
	locNoRadio:               "You don't have access to that radio channel.",
	locWhisperUnknownSpeaker: "Someone",
	locHistoryCleared:        "The round has ended. Chat history was cleared.",
}

// Localizer переводит ключ сообщения в текст. Аргументы - пары имя/значение.
type Localizer interface {
	Localize(key string, args ...string) string
}

type tableLocalizer struct {
	table map[string]string
}

func NewLocalizer() Localizer {
	return &tableLocalizer{table: englishStrings}
}

func (l *tableLocalizer) Localize(key string, args ...string) string {
	text, ok := l.table[key]
	if !ok {
		return key
	}
	for i := 0; i+1 < len(args); i += 2 {
		text = strings.ReplaceAll(text, "{$"+args[i]+"}", args[i+1])
	}
	return text
}
