package dto

import (
	"strings"
	"time"

	"ai-novel-api/internal/domain/entity"
)

// GenerateRequest POST /generate 请求体
// 同时兼容旧客户端的字段名：type/content 与下划线风格的 settings 字段
type GenerateRequest struct {
	Kind          string           `json:"kind"`
	Type          string           `json:"type"`
	Settings      *SettingsPayload `json:"settings"`
	Context       *ContextPayload  `json:"context"`
	SourceContent string           `json:"sourceContent"`
	Content       string           `json:"content"`
	// Timestamp 客户端毫秒时间戳
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// SettingsPayload 写作参数
type SettingsPayload struct {
	Perspective string   `json:"perspective"`
	Tense       string   `json:"tense"`
	Style       string   `json:"style"`
	Tone        string   `json:"tone"`
	Pacing      string   `json:"pacing"`
	Target      *int     `json:"targetWordCount"`
	TargetWords *int     `json:"target_words"`
	Description string   `json:"descriptionLevel"`
	DescLevel   string   `json:"description_level"`
	Dialogue    *bool    `json:"includeDialogue"`
	DialogueOld *bool    `json:"include_dialogue"`
	Focus       []string `json:"focusElements"`
	FocusOld    []string `json:"focus_elements"`
}

// CharacterPayload 角色
type CharacterPayload struct {
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	Age              *int     `json:"age"`
	Gender           string   `json:"gender"`
	Appearance       string   `json:"appearance"`
	Personality      string   `json:"personality"`
	Background       string   `json:"background"`
	Goals            string   `json:"goals"`
	CurrentStatus    string   `json:"currentStatus"`
	CurrentStatusOld string   `json:"current_status"`
	Skills           []string `json:"skills"`
}

// WorldSettingPayload 世界观
type WorldSettingPayload struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	Era                string `json:"era"`
	TechnologyLevel    string `json:"technologyLevel"`
	TechnologyLevelOld string `json:"technology_level"`
	MagicSystem        string `json:"magicSystem"`
	MagicSystemOld     string `json:"magic_system"`
	Geography          string `json:"geography"`
	Politics           string `json:"politics"`
	Economy            string `json:"economy"`
	Culture            string `json:"culture"`
	History            string `json:"history"`
}

// ScenePayload 目标场景
type ScenePayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Time        string   `json:"time"`
	Purpose     string   `json:"purpose"`
	Mood        string   `json:"mood"`
	Characters  []string `json:"characters"`
	Conflicts   []string `json:"conflicts"`
	Outcomes    []string `json:"outcomes"`
}

// ContextPayload 叙事上下文
type ContextPayload struct {
	ProjectID          string               `json:"projectId"`
	Characters         []CharacterPayload   `json:"characters"`
	WorldSetting       *WorldSettingPayload `json:"worldSetting"`
	PreviousChapters   []string             `json:"previousChapters"`
	TargetScene        *ScenePayload        `json:"targetScene"`
	CustomInstructions string               `json:"customInstructions"`
}

// HasRequired type、settings、context 均需提供
func (r *GenerateRequest) HasRequired() bool {
	return r.kind() != "" && r.Settings != nil && r.Context != nil
}

func (r *GenerateRequest) kind() string {
	return firstNonEmpty(r.Kind, r.Type)
}

// ClientTime 客户端时间戳转换为时间
func (r *GenerateRequest) ClientTime() *time.Time {
	if r.Timestamp == nil || *r.Timestamp <= 0 {
		return nil
	}
	t := time.UnixMilli(*r.Timestamp)
	return &t
}

// ToEntity 转换为领域请求
func (r *GenerateRequest) ToEntity() *entity.GenerationRequest {
	req := &entity.GenerationRequest{
		Kind:          entity.GenerationKind(strings.TrimSpace(r.kind())),
		SourceContent: firstNonEmpty(r.SourceContent, r.Content),
	}
	if r.Settings != nil {
		req.Settings = r.Settings.ToEntity()
	}
	if r.Context != nil {
		req.Context = r.Context.ToEntity()
	}
	return req
}

// ToEntity 转换为领域写作参数
func (s *SettingsPayload) ToEntity() entity.GenerationSettings {
	if s == nil {
		return entity.GenerationSettings{}
	}
	out := entity.GenerationSettings{
		Perspective:      entity.Perspective(s.Perspective),
		Tense:            entity.Tense(s.Tense),
		Style:            s.Style,
		Tone:             s.Tone,
		Pacing:           entity.Pacing(s.Pacing),
		DescriptionLevel: entity.DescriptionLevel(firstNonEmpty(s.Description, s.DescLevel)),
		FocusElements:    s.Focus,
	}
	if out.FocusElements == nil {
		out.FocusElements = s.FocusOld
	}
	if v := firstInt(s.Target, s.TargetWords); v != nil {
		out.TargetWordCount = *v
	}
	if v := firstBool(s.Dialogue, s.DialogueOld); v != nil {
		out.IncludeDialogue = *v
	}
	return out
}

// ToEntity 转换为领域角色
func (c *CharacterPayload) ToEntity() entity.Character {
	return entity.Character{
		Name:          c.Name,
		Role:          entity.CharacterRole(c.Role),
		Age:           c.Age,
		Gender:        c.Gender,
		Appearance:    c.Appearance,
		Personality:   c.Personality,
		Background:    c.Background,
		Goals:         c.Goals,
		CurrentStatus: firstNonEmpty(c.CurrentStatus, c.CurrentStatusOld),
		Skills:        c.Skills,
	}
}

// ToEntity 转换为领域场景
func (s *ScenePayload) ToEntity() entity.TargetScene {
	return entity.TargetScene{
		Title:       s.Title,
		Description: s.Description,
		Location:    s.Location,
		Time:        s.Time,
		Purpose:     s.Purpose,
		Mood:        s.Mood,
		Characters:  s.Characters,
		Conflicts:   s.Conflicts,
		Outcomes:    s.Outcomes,
	}
}

// ToEntity 转换为领域叙事上下文
func (c *ContextPayload) ToEntity() entity.NarrativeContext {
	if c == nil {
		return entity.NarrativeContext{}
	}
	out := entity.NarrativeContext{
		ProjectID:          c.ProjectID,
		PreviousChapters:   c.PreviousChapters,
		CustomInstructions: c.CustomInstructions,
	}
	if len(c.Characters) > 0 {
		out.Characters = make([]entity.Character, 0, len(c.Characters))
		for i := range c.Characters {
			out.Characters = append(out.Characters, c.Characters[i].ToEntity())
		}
	}
	if w := c.WorldSetting; w != nil {
		out.WorldSetting = &entity.WorldSetting{
			Name:            w.Name,
			Description:     w.Description,
			Era:             w.Era,
			TechnologyLevel: firstNonEmpty(w.TechnologyLevel, w.TechnologyLevelOld),
			MagicSystem:     firstNonEmpty(w.MagicSystem, w.MagicSystemOld),
			Geography:       w.Geography,
			Politics:        w.Politics,
			Economy:         w.Economy,
			Culture:         w.Culture,
			History:         w.History,
		}
	}
	if c.TargetScene != nil {
		scene := c.TargetScene.ToEntity()
		out.TargetScene = &scene
	}
	return out
}

// GenerateResponse 生成接口响应，沿用旧客户端解析的结构
type GenerateResponse struct {
	Success  bool                    `json:"success"`
	Content  string                  `json:"content,omitempty"`
	Metadata *entity.ContentMetadata `json:"metadata,omitempty"`
	TaskID   string                  `json:"taskId,omitempty"`
	Error    string                  `json:"error,omitempty"`
	Detail   string                  `json:"detail,omitempty"`
}

// 错误提示
const (
	MsgMissingParams    = "缺少必要参数"
	MsgGenerationFailed = "AI 生成失败"
	MsgInternalError    = "服务器内部错误"
)

// HealthBody /health 与 GET /generate 的响应体
type HealthBody struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstBool(values ...*bool) *bool {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
