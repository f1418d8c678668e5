package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"station_chat/internal/domain"
	"station_chat/internal/prototype"
)

// SanitizeStep предлагает финальный текст через outcome.Commit
type SanitizeStep interface {
	Name() string
	Kinds() []domain.ChatKind
	Apply(attempt domain.ChatAttempt, outcome *domain.SanitizationOutcome)
}

// Sanitizer превращает сырой текст в финальный один раз за попытку.
// Побеждает первый шаг, вызвавший Commit.
type Sanitizer struct {
	byKind map[domain.ChatKind][]SanitizeStep
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{byKind: make(map[domain.ChatKind][]SanitizeStep)}
}

func (s *Sanitizer) Register(step SanitizeStep) {
	kinds := step.Kinds()
	if len(kinds) == 0 {
		kinds = domain.AllKinds
	}
	for _, kind := range kinds {
		s.byKind[kind] = append(s.byKind[kind], step)
	}
}

func (s *Sanitizer) Sanitize(attempt domain.ChatAttempt) string {
	outcome := domain.NewSanitizationOutcome(attempt.Text)
	for _, step := range s.byKind[attempt.Kind()] {
		step.Apply(attempt, outcome)
	}
	return outcome.Final()
}

// Replacer - словарные замены из прототипов
type Replacer interface {
	ApplyReplacements(text, accentID string) string
}

var lonelyI = regexp.MustCompile(`\bi\b`)

type icStep struct {
	replacer Replacer
	enabled  bool
}

// NewICSanitizeStep - речь и радио: замена сокращений, заглавные буквы, точка в конце
func NewICSanitizeStep(replacer Replacer, enabled bool) SanitizeStep {
	return &icStep{replacer: replacer, enabled: enabled}
}

func (s *icStep) Name() string { return "in_character" }

func (s *icStep) Kinds() []domain.ChatKind {
	return []domain.ChatKind{domain.KindVerbal, domain.KindRadio}
}

func (s *icStep) Apply(attempt domain.ChatAttempt, outcome *domain.SanitizationOutcome) {
	text := strings.TrimSpace(outcome.Raw())
	if text == "" {
		outcome.Commit("")
		return
	}
	if s.enabled {
		text = s.replacer.ApplyReplacements(text, prototype.SanitizeAccent)
	}
	text = capitalize(text)
	text = lonelyI.ReplaceAllString(text, "I")
	outcome.Commit(withTerminalPunctuation(text))
}

type emoteStep struct {
	replacer Replacer
	enabled  bool
}

// NewEmoteSanitizeStep - эмоции: звездочки по краям убираются, регистр не меняется
func NewEmoteSanitizeStep(replacer Replacer, enabled bool) SanitizeStep {
	return &emoteStep{replacer: replacer, enabled: enabled}
}

func (s *emoteStep) Name() string { return "emote" }

func (s *emoteStep) Kinds() []domain.ChatKind {
	return []domain.ChatKind{domain.KindVisual}
}

func (s *emoteStep) Apply(attempt domain.ChatAttempt, outcome *domain.SanitizationOutcome) {
	text := strings.TrimSpace(strings.Trim(strings.TrimSpace(outcome.Raw()), "*"))
	if s.enabled && text != "" {
		text = s.replacer.ApplyReplacements(text, prototype.SanitizeAccent)
	}
	outcome.Commit(text)
}

type oocStep struct{}

// NewOOCSanitizeStep - OOC и объявления только обрезаются
func NewOOCSanitizeStep() SanitizeStep { return oocStep{} }

func (oocStep) Name() string { return "out_of_character" }

func (oocStep) Kinds() []domain.ChatKind {
	return []domain.ChatKind{domain.KindOOC, domain.KindAnnouncement}
}

func (oocStep) Apply(attempt domain.ChatAttempt, outcome *domain.SanitizationOutcome) {
	outcome.Commit(strings.TrimSpace(outcome.Raw()))
}

func capitalize(text string) string {
	r, size := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return text
	}
	return string(unicode.ToUpper(r)) + text[size:]
}

func withTerminalPunctuation(text string) string {
	r, _ := utf8.DecodeLastRuneInString(text)
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return text + "."
	}
	return text
}
