package prototype

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
	"station_chat/internal/domain"
)

const (
	ChannelsFile = "channels.yml"
	AccentsFile  = "accents.yml"

	// SanitizeAccent - словарь, который применяется ко всем IC сообщениям
	SanitizeAccent = "chatsanitize"
)

//go:embed defaults/*.yml
var defaults embed.FS

type replacement struct {
	pattern *regexp.Regexp
	value   string
}

// Store - загруженные прототипы каналов и акцентов (только чтение после загрузки)
type Store struct {
	channels map[domain.ChannelID]domain.ChannelPrototype
	order    []domain.ChannelID
	accents  map[string][]replacement
}

// LoadDefaults загружает встроенные прототипы
func LoadDefaults() (*Store, error) {
	return Load("")
}

// Load читает прототипы из dir; отсутствующие файлы берутся из встроенных
func Load(dir string) (*Store, error) {
	channelsData, err := readFile(dir, ChannelsFile)
	if err != nil {
		return nil, err
	}
	accentsData, err := readFile(dir, AccentsFile)
	if err != nil {
		return nil, err
	}

	var channels []domain.ChannelPrototype
	if err := yaml.Unmarshal(channelsData, &channels); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ChannelsFile, err)
	}
	var accents []domain.ReplacementAccent
	if err := yaml.Unmarshal(accentsData, &accents); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", AccentsFile, err)
	}

	return NewStore(channels, accents)
}

// NewStore проверяет прототипы и строит индексы
func NewStore(channels []domain.ChannelPrototype, accents []domain.ReplacementAccent) (*Store, error) {
	s := &Store{
		channels: make(map[domain.ChannelID]domain.ChannelPrototype, len(channels)),
		accents:  make(map[string][]replacement, len(accents)),
	}

	for _, ch := range channels {
		if ch.ID == "" {
			return nil, errors.New("channel prototype without id")
		}
		if !ch.Kind.Valid() {
			return nil, fmt.Errorf("channel %s: unknown kind %q", ch.ID, ch.Kind)
		}
		if ch.Targets == "" {
			ch.Targets = domain.TargetGlobal
		}
		switch ch.Targets {
		case domain.TargetRange, domain.TargetGlobal, domain.TargetAdmins, domain.TargetRadio, domain.TargetDead:
		default:
			return nil, fmt.Errorf("channel %s: unknown targets %q", ch.ID, ch.Targets)
		}
		if ch.Targets == domain.TargetRange && ch.Range <= 0 {
			return nil, fmt.Errorf("channel %s: range targeting requires positive range", ch.ID)
		}
		if _, exists := s.channels[ch.ID]; exists {
			return nil, fmt.Errorf("duplicate channel prototype %s", ch.ID)
		}
		s.channels[ch.ID] = ch
		s.order = append(s.order, ch.ID)
	}

	for _, accent := range accents {
		if accent.ID == "" {
			return nil, errors.New("accent prototype without id")
		}
		s.accents[accent.ID] = compileAccent(accent)
	}

	return s, nil
}

func readFile(dir, name string) ([]byte, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
	}
	data, err := defaults.ReadFile("defaults/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded %s: %w", name, err)
	}
	return data, nil
}

// длинные слова раньше коротких, чтобы фразы не перекрывались
func compileAccent(accent domain.ReplacementAccent) []replacement {
	words := make([]string, 0, len(accent.Words))
	for w := range accent.Words {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})

	out := make([]replacement, 0, len(words))
	for _, w := range words {
		out = append(out, replacement{
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`),
			value:   accent.Words[w],
		})
	}
	return out
}

func (s *Store) Channel(id domain.ChannelID) (domain.ChannelPrototype, bool) {
	ch, ok := s.channels[id]
	return ch, ok
}

// Channels возвращает каналы в порядке объявления
func (s *Store) Channels() []domain.ChannelPrototype {
	out := make([]domain.ChannelPrototype, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.channels[id])
	}
	return out
}

func (s *Store) HasAccent(id string) bool {
	_, ok := s.accents[id]
	return ok
}

// ApplyReplacements заменяет слова по словарю, сохраняя регистр
func (s *Store) ApplyReplacements(text, accentID string) string {
	reps, ok := s.accents[accentID]
	if !ok || text == "" {
		return text
	}
	for _, rep := range reps {
		value := rep.value
		text = rep.pattern.ReplaceAllStringFunc(text, func(match string) string {
			return matchCase(match, value)
		})
	}
	return text
}

func matchCase(original, replacement string) string {
	if original == strings.ToUpper(original) && utf8.RuneCountInString(original) > 1 {
		return strings.ToUpper(replacement)
	}
	first, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(first) {
		r, size := utf8.DecodeRuneInString(replacement)
		return string(unicode.ToUpper(r)) + replacement[size:]
	}
	return replacement
}
