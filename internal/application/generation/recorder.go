package generation

import (
	"context"

	"ai-novel-api/internal/domain/entity"
	"ai-novel-api/internal/domain/repository"
	"ai-novel-api/pkg/logger"
)

// TaskRecorder 记录一次生成任务，失败只影响留档不影响响应
type TaskRecorder interface {
	Record(ctx context.Context, task *entity.GenerationTask) error
}

// TaskPublisher 任务记录投递端口，由 messaging.Producer 实现
type TaskPublisher interface {
	PublishTask(ctx context.Context, task *entity.GenerationTask) (string, error)
}

// StreamRecorder 投递到 Redis Stream，由 job-worker 落库
type StreamRecorder struct {
	publisher TaskPublisher
}

func NewStreamRecorder(publisher TaskPublisher) *StreamRecorder {
	return &StreamRecorder{publisher: publisher}
}

func (r *StreamRecorder) Record(ctx context.Context, task *entity.GenerationTask) error {
	id, err := r.publisher.PublishTask(ctx, task)
	if err != nil {
		return err
	}
	logger.Debug(ctx, "generation task published", "task_id", task.ID, "stream_id", id)
	return nil
}

// RepositoryRecorder 直接写库
type RepositoryRecorder struct {
	repo repository.GenerationTaskRepository
}

func NewRepositoryRecorder(repo repository.GenerationTaskRepository) *RepositoryRecorder {
	return &RepositoryRecorder{repo: repo}
}

func (r *RepositoryRecorder) Record(ctx context.Context, task *entity.GenerationTask) error {
	return r.repo.Create(ctx, task)
}

// LogRecorder 无存储时仅输出日志
type LogRecorder struct{}

func (LogRecorder) Record(ctx context.Context, task *entity.GenerationTask) error {
	logger.Info(ctx, "generation task completed",
		"task_id", task.ID,
		"kind", task.Kind,
		"source", task.Source,
		"word_count", task.WordCount,
		"duration_ms", task.DurationMs,
	)
	return nil
}
