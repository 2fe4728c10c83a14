// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
)

// GenerationKind 生成类型
type GenerationKind string

const (
	KindChapter              GenerationKind = "chapter"
	KindScene                GenerationKind = "scene"
	KindCharacterDescription GenerationKind = "character_description"
	KindDialogue             GenerationKind = "dialogue"
	KindRevision             GenerationKind = "revision"
)

// Valid 是否为已知生成类型
func (k GenerationKind) Valid() bool {
	switch k {
	case KindChapter, KindScene, KindCharacterDescription, KindDialogue, KindRevision:
		return true
	}
	return false
}

// Perspective 叙事视角
type Perspective string

const (
	PerspectiveFirstPerson           Perspective = "first_person"
	PerspectiveSecondPerson          Perspective = "second_person"
	PerspectiveThirdPersonLimited    Perspective = "third_person_limited"
	PerspectiveThirdPersonOmniscient Perspective = "third_person_omniscient"
)

// Tense 时态
type Tense string

const (
	TensePast    Tense = "past"
	TensePresent Tense = "present"
	TenseFuture  Tense = "future"
)

// DescriptionLevel 描写程度
type DescriptionLevel string

const (
	DescriptionMinimal  DescriptionLevel = "minimal"
	DescriptionModerate DescriptionLevel = "moderate"
	DescriptionDetailed DescriptionLevel = "detailed"
)

// Pacing 节奏
type Pacing string

const (
	PacingFast   Pacing = "fast"
	PacingMedium Pacing = "medium"
	PacingSlow   Pacing = "slow"
)

// CharacterRole 角色定位
type CharacterRole string

const (
	RoleProtagonist CharacterRole = "protagonist"
	RoleAntagonist  CharacterRole = "antagonist"
	RoleSupporting  CharacterRole = "supporting"
	RoleMinor       CharacterRole = "minor"
)

// GenerationSettings 写作风格参数
type GenerationSettings struct {
	Perspective      Perspective      `json:"perspective"`
	Tense            Tense            `json:"tense"`
	Style            string           `json:"style"`
	Tone             string           `json:"tone"`
	TargetWordCount  int              `json:"targetWordCount"`
	DescriptionLevel DescriptionLevel `json:"descriptionLevel"`
	Pacing           Pacing           `json:"pacing"`
	IncludeDialogue  bool             `json:"includeDialogue"`
	FocusElements    []string         `json:"focusElements,omitempty"`
}

// Clone 深拷贝
func (s GenerationSettings) Clone() GenerationSettings {
	s.FocusElements = cloneStrings(s.FocusElements)
	return s
}

// Character 角色
type Character struct {
	Name          string        `json:"name"`
	Role          CharacterRole `json:"role"`
	Age           *int          `json:"age,omitempty"`
	Gender        string        `json:"gender,omitempty"`
	Appearance    string        `json:"appearance"`
	Personality   string        `json:"personality"`
	Background    string        `json:"background"`
	Goals         string        `json:"goals"`
	CurrentStatus string        `json:"currentStatus"`
	Skills        []string      `json:"skills,omitempty"`
}

// WorldSetting 世界观设定
type WorldSetting struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Era             string `json:"era"`
	TechnologyLevel string `json:"technologyLevel"`
	MagicSystem     string `json:"magicSystem,omitempty"`
	Geography       string `json:"geography"`
	Politics        string `json:"politics"`
	Economy         string `json:"economy"`
	Culture         string `json:"culture"`
	History         string `json:"history"`
}

// TargetScene 目标场景
type TargetScene struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Time        string   `json:"time"`
	Purpose     string   `json:"purpose"`
	Mood        string   `json:"mood"`
	Characters  []string `json:"characters,omitempty"`
	Conflicts   []string `json:"conflicts,omitempty"`
	Outcomes    []string `json:"outcomes,omitempty"`
}

// NarrativeContext 生成所需的叙事上下文
type NarrativeContext struct {
	ProjectID          string        `json:"projectId"`
	Characters         []Character   `json:"characters,omitempty"`
	WorldSetting       *WorldSetting `json:"worldSetting,omitempty"`
	PreviousChapters   []string      `json:"previousChapters,omitempty"`
	TargetScene        *TargetScene  `json:"targetScene,omitempty"`
	CustomInstructions string        `json:"customInstructions,omitempty"`
}

// Clone 深拷贝，构造派生请求时不共享底层切片和指针
func (c NarrativeContext) Clone() NarrativeContext {
	if c.Characters != nil {
		chars := make([]Character, len(c.Characters))
		for i, ch := range c.Characters {
			ch.Skills = cloneStrings(ch.Skills)
			if ch.Age != nil {
				age := *ch.Age
				ch.Age = &age
			}
			chars[i] = ch
		}
		c.Characters = chars
	}
	if c.WorldSetting != nil {
		ws := *c.WorldSetting
		c.WorldSetting = &ws
	}
	c.PreviousChapters = cloneStrings(c.PreviousChapters)
	if c.TargetScene != nil {
		c.TargetScene = c.TargetScene.Clone()
	}
	return c
}

// Clone 深拷贝
func (s *TargetScene) Clone() *TargetScene {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Characters = cloneStrings(s.Characters)
	cp.Conflicts = cloneStrings(s.Conflicts)
	cp.Outcomes = cloneStrings(s.Outcomes)
	return &cp
}

// GenerationRequest 一次生成请求
type GenerationRequest struct {
	Kind          GenerationKind     `json:"kind"`
	Settings      GenerationSettings `json:"settings"`
	Context       NarrativeContext   `json:"context"`
	SourceContent string             `json:"sourceContent,omitempty"`
}

// Validate 校验请求，返回的错误描述缺失或非法的字段
func (r *GenerationRequest) Validate() error {
	var problems []string
	if r.Kind == "" {
		problems = append(problems, "kind is required")
	}
	if r.Settings.TargetWordCount <= 0 {
		problems = append(problems, "settings.targetWordCount must be positive")
	}
	if r.Kind == KindRevision && strings.TrimSpace(r.SourceContent) == "" {
		problems = append(problems, "sourceContent is required for revision")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid generation request: %s", strings.Join(problems, "; "))
	}
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// StyleCharacteristics 写作风格特征
type StyleCharacteristics struct {
	VocabularyLevel   string `json:"vocabularyLevel"`
	SentenceStructure string `json:"sentenceStructure"`
	DescriptiveStyle  string `json:"descriptiveStyle"`
	DialogueStyle     string `json:"dialogueStyle"`
	NarrativeVoice    string `json:"narrativeVoice"`
}

// StyleTemplate 供模仿的写作风格模板
type StyleTemplate struct {
	Name            string               `json:"name"`
	Description     string               `json:"description"`
	SampleText      string               `json:"sampleText"`
	Characteristics StyleCharacteristics `json:"characteristics"`
}
