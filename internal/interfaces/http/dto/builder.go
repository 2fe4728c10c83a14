package dto

import "ai-novel-api/internal/domain/entity"

// BuilderBase 构造类接口的公共字段，preset 非空时用预设覆盖风格参数
type BuilderBase struct {
	Settings *SettingsPayload      `json:"settings"`
	Context  *ContextPayload       `json:"context"`
	Preset   string                `json:"preset,omitempty"`
	Style    *StyleTemplatePayload `json:"styleTemplate,omitempty"`
}

// SceneGenerateRequest POST /v1/generate/scene
type SceneGenerateRequest struct {
	BuilderBase
	Scene *ScenePayload `json:"scene"`
}

// CharacterGenerateRequest POST /v1/generate/character
type CharacterGenerateRequest struct {
	BuilderBase
	Character *CharacterPayload `json:"character"`
}

// DialogueGenerateRequest POST /v1/generate/dialogue
type DialogueGenerateRequest struct {
	BuilderBase
	Participants []CharacterPayload `json:"participants"`
	Situation    string             `json:"situation"`
}

// RevisionGenerateRequest POST /v1/generate/revision
type RevisionGenerateRequest struct {
	BuilderBase
	Original string   `json:"original"`
	Goals    []string `json:"goals"`
}

// StyleTemplatePayload 写作风格模板，兼容下划线字段
type StyleTemplatePayload struct {
	Name            string                     `json:"name"`
	Description     string                     `json:"description"`
	SampleText      string                     `json:"sampleText"`
	SampleTextOld   string                     `json:"sample_text"`
	Characteristics StyleCharacteristicPayload `json:"characteristics"`
}

// StyleCharacteristicPayload 风格特征
type StyleCharacteristicPayload struct {
	VocabularyLevel      string `json:"vocabularyLevel"`
	VocabularyLevelOld   string `json:"vocabulary_level"`
	SentenceStructure    string `json:"sentenceStructure"`
	SentenceStructureOld string `json:"sentence_structure"`
	DescriptiveStyle     string `json:"descriptiveStyle"`
	DescriptiveStyleOld  string `json:"descriptive_style"`
	DialogueStyle        string `json:"dialogueStyle"`
	DialogueStyleOld     string `json:"dialogue_style"`
	NarrativeVoice       string `json:"narrativeVoice"`
	NarrativeVoiceOld    string `json:"narrative_voice"`
}

// ToEntity 转换为领域风格模板
func (p *StyleTemplatePayload) ToEntity() entity.StyleTemplate {
	c := p.Characteristics
	return entity.StyleTemplate{
		Name:        p.Name,
		Description: p.Description,
		SampleText:  firstNonEmpty(p.SampleText, p.SampleTextOld),
		Characteristics: entity.StyleCharacteristics{
			VocabularyLevel:   firstNonEmpty(c.VocabularyLevel, c.VocabularyLevelOld),
			SentenceStructure: firstNonEmpty(c.SentenceStructure, c.SentenceStructureOld),
			DescriptiveStyle:  firstNonEmpty(c.DescriptiveStyle, c.DescriptiveStyleOld),
			DialogueStyle:     firstNonEmpty(c.DialogueStyle, c.DialogueStyleOld),
			NarrativeVoice:    firstNonEmpty(c.NarrativeVoice, c.NarrativeVoiceOld),
		},
	}
}

// TaskResponse 任务记录
type TaskResponse struct {
	ID              string                  `json:"id"`
	ProjectID       string                  `json:"project_id,omitempty"`
	Kind            string                  `json:"kind"`
	Status          string                  `json:"status"`
	Source          string                  `json:"source"`
	WordCount       int                     `json:"word_count"`
	LLMModel        string                  `json:"llm_model,omitempty"`
	Tokens          int                     `json:"tokens,omitempty"`
	DurationMs      int64                   `json:"duration_ms"`
	Metadata        *entity.ContentMetadata `json:"metadata,omitempty"`
	ClientTimestamp string                  `json:"client_timestamp,omitempty"`
	CreatedAt       string                  `json:"created_at"`
}

// ToTaskResponse 转换任务记录
func ToTaskResponse(t *entity.GenerationTask) *TaskResponse {
	resp := &TaskResponse{
		ID:         t.ID,
		ProjectID:  t.ProjectID,
		Kind:       string(t.Kind),
		Status:     string(t.Status),
		Source:     string(t.Source),
		WordCount:  t.WordCount,
		LLMModel:   t.LLMModel,
		Tokens:     t.TokensPrompt + t.TokensComplete,
		DurationMs: t.DurationMs,
		Metadata:   t.Metadata,
		CreatedAt:  t.CreatedAt.Format(timeLayout),
	}
	if t.ClientTimestamp != nil {
		resp.ClientTimestamp = t.ClientTimestamp.Format(timeLayout)
	}
	return resp
}
