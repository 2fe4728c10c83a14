package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TaskStatus 任务记录状态
type TaskStatus string

const (
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// GenerationTask 一次生成调用的留档记录，只追加不更新
type GenerationTask struct {
	ID              string              `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID       string              `json:"project_id,omitempty" gorm:"type:varchar(64);index"`
	Kind            GenerationKind      `json:"kind" gorm:"type:varchar(50);not null;index"`
	Status          TaskStatus          `json:"status" gorm:"type:varchar(20);not null"`
	Settings        *GenerationSettings `json:"settings,omitempty" gorm:"type:jsonb;serializer:json"`
	FocusElements   pq.StringArray      `json:"focus_elements,omitempty" gorm:"type:text[]"`
	Content         string              `json:"content,omitempty" gorm:"type:text"`
	Metadata        *ContentMetadata    `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`
	WordCount       int                 `json:"word_count" gorm:"default:0"`
	Source          ContentSource       `json:"source" gorm:"type:varchar(20)"`
	LLMModel        string              `json:"llm_model,omitempty" gorm:"column:llm_model;type:varchar(100)"`
	TokensPrompt    int                 `json:"tokens_prompt,omitempty"`
	TokensComplete  int                 `json:"tokens_completion,omitempty"`
	DurationMs      int64               `json:"duration_ms"`
	RequestID       string              `json:"request_id,omitempty" gorm:"type:varchar(64);index"`
	ClientTimestamp *time.Time          `json:"client_timestamp,omitempty"`
	CreatedAt       time.Time           `json:"created_at" gorm:"index"`
}

// TableName 指定表名
func (GenerationTask) TableName() string {
	return "generation_tasks"
}

// NewGenerationTask 由一次完成的生成构造任务记录
func NewGenerationTask(req *GenerationRequest, content string, meta ContentMetadata) *GenerationTask {
	settings := req.Settings.Clone()
	return &GenerationTask{
		ID:            uuid.NewString(),
		ProjectID:     req.Context.ProjectID,
		Kind:          req.Kind,
		Status:        TaskStatusCompleted,
		Settings:      &settings,
		FocusElements: pq.StringArray(settings.FocusElements),
		Content:       content,
		Metadata:      &meta,
		WordCount:     meta.WordCount,
		Source:        meta.Source,
		CreatedAt:     time.Now(),
	}
}

// SetLLMMetrics 记录模型与 token 用量
func (t *GenerationTask) SetLLMMetrics(model string, promptTokens, completionTokens int) {
	t.LLMModel = model
	t.TokensPrompt = promptTokens
	t.TokensComplete = completionTokens
}
