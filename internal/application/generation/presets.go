package generation

import (
	"sort"
	"strings"

	"ai-novel-api/internal/domain/entity"
)

// 预设名称
const (
	PresetFastDraft         = "FAST_DRAFT"
	PresetDetailedNarrative = "DETAILED_NARRATIVE"
	PresetDialogueHeavy     = "DIALOGUE_HEAVY"
	PresetAtmospheric       = "ATMOSPHERIC"
)

// presets 不含目标字数，应用时保留调用方的目标字数
var presets = map[string]entity.GenerationSettings{
	PresetFastDraft: {
		Style:            "simple",
		Tone:             "neutral",
		Perspective:      entity.PerspectiveThirdPersonLimited,
		Tense:            entity.TensePast,
		IncludeDialogue:  true,
		DescriptionLevel: entity.DescriptionMinimal,
		Pacing:           entity.PacingFast,
		FocusElements:    []string{"plot_advancement", "action"},
	},
	PresetDetailedNarrative: {
		Style:            "literary",
		Tone:             "immersive",
		Perspective:      entity.PerspectiveThirdPersonOmniscient,
		Tense:            entity.TensePast,
		IncludeDialogue:  true,
		DescriptionLevel: entity.DescriptionDetailed,
		Pacing:           entity.PacingMedium,
		FocusElements:    []string{"character_development", "world_building", "atmosphere"},
	},
	PresetDialogueHeavy: {
		Style:            "conversational",
		Tone:             "dynamic",
		Perspective:      entity.PerspectiveThirdPersonLimited,
		Tense:            entity.TensePresent,
		IncludeDialogue:  true,
		DescriptionLevel: entity.DescriptionModerate,
		Pacing:           entity.PacingFast,
		FocusElements:    []string{"character_interaction", "conflict", "revelation"},
	},
	PresetAtmospheric: {
		Style:            "descriptive",
		Tone:             "moody",
		Perspective:      entity.PerspectiveThirdPersonOmniscient,
		Tense:            entity.TensePast,
		IncludeDialogue:  false,
		DescriptionLevel: entity.DescriptionDetailed,
		Pacing:           entity.PacingSlow,
		FocusElements:    []string{"setting", "mood", "symbolism", "internal_thoughts"},
	},
}

// Preset 按名称取预设，名称不区分大小写，返回副本
func Preset(name string) (entity.GenerationSettings, bool) {
	p, ok := presets[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return entity.GenerationSettings{}, false
	}
	return p.Clone(), true
}

// PresetNames 所有预设名称，按字母序
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset 用预设覆盖风格参数，目标字数沿用 base
func ApplyPreset(base entity.GenerationSettings, name string) (entity.GenerationSettings, bool) {
	p, ok := Preset(name)
	if !ok {
		return base.Clone(), false
	}
	p.TargetWordCount = base.TargetWordCount
	return p, true
}
