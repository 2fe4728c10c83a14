package repository

import (
	"context"
	"time"

	"ai-novel-api/internal/domain/entity"
)

// TaskFilter 任务记录过滤条件
type TaskFilter struct {
	Kind   entity.GenerationKind
	Source entity.ContentSource
	Since  *time.Time
}

// TaskStats 项目维度的生成统计
type TaskStats struct {
	TotalTasks     int64 `json:"total_tasks"`
	FallbackTasks  int64 `json:"fallback_tasks"`
	TotalWordCount int64 `json:"total_word_count"`
	TotalTokens    int64 `json:"total_tokens"`
}

// GenerationTaskRepository 生成任务记录仓储
type GenerationTaskRepository interface {
	// Create 写入记录，同 ID 重复写入视为成功
	Create(ctx context.Context, task *entity.GenerationTask) error

	// GetByID 不存在时返回 nil, nil
	GetByID(ctx context.Context, id string) (*entity.GenerationTask, error)

	// ListByProject 按创建时间倒序分页
	ListByProject(ctx context.Context, projectID string, filter *TaskFilter, pagination Pagination) (*PagedResult[*entity.GenerationTask], error)

	// GetStats 统计项目的生成情况
	GetStats(ctx context.Context, projectID string) (*TaskStats, error)
}
