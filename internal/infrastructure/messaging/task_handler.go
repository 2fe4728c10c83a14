package messaging

import (
	"context"
	"fmt"

	"ai-novel-api/internal/domain/entity"
	"ai-novel-api/internal/domain/repository"
	"ai-novel-api/pkg/logger"
)

// TaskPersistHandler 将任务记录消息写入仓储，重复投递依赖仓储按 ID 去重
func TaskPersistHandler(repo repository.GenerationTaskRepository) MessageHandler {
	return func(ctx context.Context, msg *Message) error {
		var task entity.GenerationTask
		if err := msg.UnmarshalPayload(&task); err != nil {
			return fmt.Errorf("decode generation task %s: %w", msg.ID, err)
		}
		if task.ID == "" {
			task.ID = msg.ID
		}
		if task.RequestID == "" {
			task.RequestID = msg.GetMetadata("request_id")
		}

		if err := repo.Create(ctx, &task); err != nil {
			return fmt.Errorf("persist generation task %s: %w", task.ID, err)
		}
		logger.Debug(ctx, "generation task persisted", "task_id", task.ID, "project_id", task.ProjectID)
		return nil
	}
}
