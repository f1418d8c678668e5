package domain

// TargetMode - способ вычисления получателей для канала
type TargetMode string

const (
	TargetRange  TargetMode = "range"
	TargetGlobal TargetMode = "global"
	TargetAdmins TargetMode = "admins"
	TargetRadio  TargetMode = "radio"
	TargetDead   TargetMode = "dead"
)

// ChannelPrototype - описание канала из прототипов
type ChannelPrototype struct {
	ID                 ChannelID  `yaml:"id" json:"id"`
	Kind               ChatKind   `yaml:"kind" json:"kind"`
	Targets            TargetMode `yaml:"targets" json:"targets"`
	Range              float64    `yaml:"range" json:"range,omitempty"`
	ClearRange         float64    `yaml:"clear_range" json:"clear_range,omitempty"`
	Frequency          string     `yaml:"frequency" json:"frequency,omitempty"`
	MaxLength          int        `yaml:"max_length" json:"max_length,omitempty"`
	RequiresEntity     bool       `yaml:"requires_entity" json:"requires_entity"`
	RequiresAlive      bool       `yaml:"requires_alive" json:"requires_alive"`
	RequiresAdmin      bool       `yaml:"requires_admin" json:"requires_admin"`
	RequiresGhost      bool       `yaml:"requires_ghost" json:"requires_ghost"`
	RequiresTarget     bool       `yaml:"requires_target" json:"requires_target"`
	SkipEntityMutation bool       `yaml:"skip_entity_mutation" json:"skip_entity_mutation"`
	Toggle             string     `yaml:"toggle" json:"toggle,omitempty"`
}

// Whisper - канал с зоной разборчивости меньше зоны слышимости
func (c ChannelPrototype) Whisper() bool {
	return c.ClearRange > 0 && c.ClearRange < c.Range
}

// EntityIndependent - канал не зависит от сущности говорящего (OOC, системные)
func (c ChannelPrototype) EntityIndependent() bool {
	return c.SkipEntityMutation || c.Kind == KindOOC || c.Kind == KindAnnouncement
}

// ReplacementAccent - прототип словарной замены
type ReplacementAccent struct {
	ID    string            `yaml:"id"`
	Words map[string]string `yaml:"words"`
}
