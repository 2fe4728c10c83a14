package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ai-novel-api/internal/domain/entity"
	"ai-novel-api/internal/domain/repository"
)

// TaskRepository 生成任务记录仓储实现
type TaskRepository struct {
	client *Client
}

// NewTaskRepository 创建任务记录仓储
func NewTaskRepository(client *Client) *TaskRepository {
	return &TaskRepository{client: client}
}

// Create 写入记录，主键冲突时忽略，消息重投不会产生重复行
func (r *TaskRepository) Create(ctx context.Context, task *entity.GenerationTask) error {
	ctx, span := tracer.Start(ctx, "postgres.TaskRepository.Create")
	defer span.End()

	err := r.client.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(task).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create generation task: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取记录
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*entity.GenerationTask, error) {
	ctx, span := tracer.Start(ctx, "postgres.TaskRepository.GetByID")
	defer span.End()

	var task entity.GenerationTask
	if err := r.client.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get generation task: %w", err)
	}
	return &task, nil
}

// ListByProject 获取项目的任务记录
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string, filter *repository.TaskFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationTask], error) {
	ctx, span := tracer.Start(ctx, "postgres.TaskRepository.ListByProject")
	defer span.End()

	query := r.client.db.WithContext(ctx).Model(&entity.GenerationTask{}).Where("project_id = ?", projectID)
	if filter != nil {
		if filter.Kind != "" {
			query = query.Where("kind = ?", filter.Kind)
		}
		if filter.Source != "" {
			query = query.Where("source = ?", filter.Source)
		}
		if filter.Since != nil {
			query = query.Where("created_at >= ?", *filter.Since)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count generation tasks: %w", err)
	}

	var tasks []*entity.GenerationTask
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&tasks).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list generation tasks: %w", err)
	}

	return repository.NewPagedResult(tasks, total, pagination), nil
}

// GetStats 统计项目的生成情况
func (r *TaskRepository) GetStats(ctx context.Context, projectID string) (*repository.TaskStats, error) {
	ctx, span := tracer.Start(ctx, "postgres.TaskRepository.GetStats")
	defer span.End()

	var stats repository.TaskStats
	err := r.client.db.WithContext(ctx).
		Model(&entity.GenerationTask{}).
		Select(`COUNT(*) AS total_tasks,
			COUNT(*) FILTER (WHERE source = ?) AS fallback_tasks,
			COALESCE(SUM(word_count), 0) AS total_word_count,
			COALESCE(SUM(tokens_prompt + tokens_complete), 0) AS total_tokens`, entity.SourceFallback).
		Where("project_id = ?", projectID).
		Scan(&stats).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get generation task stats: %w", err)
	}
	return &stats, nil
}
