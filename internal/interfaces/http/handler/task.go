package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ai-novel-api/internal/domain/entity"
	"ai-novel-api/internal/domain/repository"
	"ai-novel-api/internal/interfaces/http/dto"
	"ai-novel-api/pkg/errors"
	"ai-novel-api/pkg/logger"
)

// TaskHandler 生成任务记录查询，repo 为空表示未启用数据库
type TaskHandler struct {
	repo repository.GenerationTaskRepository
}

// NewTaskHandler 创建任务记录处理器
func NewTaskHandler(repo repository.GenerationTaskRepository) *TaskHandler {
	return &TaskHandler{repo: repo}
}

// ListProjectTasks 分页列出项目的生成记录
// @Summary 项目生成记录
// @Tags Tasks
// @Produce json
// @Param pid path string true "项目 ID"
// @Param kind query string false "生成类型"
// @Param source query string false "内容来源 model/fallback"
// @Param since query string false "RFC3339 起始时间"
// @Success 200 {object} dto.Response[[]dto.TaskResponse]
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/tasks [get]
func (h *TaskHandler) ListProjectTasks(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	page := dto.BindPage(c)

	q, since, err := dto.BindTaskListQuery(c)
	if err != nil {
		dto.Fail(c, errors.ErrInvalidParam.WithDetail("since must be RFC3339"))
		return
	}

	filter := &repository.TaskFilter{
		Kind:   entity.GenerationKind(q.Kind),
		Source: entity.ContentSource(q.Source),
		Since:  since,
	}
	result, err := h.repo.ListByProject(ctx, projectID, filter, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list generation tasks", err, "project_id", projectID)
		dto.Fail(c, errors.Wrap(err, errors.CodeDatabaseError, "failed to list tasks"))
		return
	}

	items := make([]*dto.TaskResponse, 0, len(result.Items))
	for _, t := range result.Items {
		items = append(items, dto.ToTaskResponse(t))
	}
	dto.SuccessWithPage(c, items, dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// GetProjectStats 项目生成统计
// @Summary 项目生成统计
// @Tags Tasks
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[repository.TaskStats]
// @Router /v1/projects/{pid}/tasks/stats [get]
func (h *TaskHandler) GetProjectStats(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	stats, err := h.repo.GetStats(ctx, projectID)
	if err != nil {
		logger.Error(ctx, "failed to get generation stats", err, "project_id", projectID)
		dto.Fail(c, errors.Wrap(err, errors.CodeDatabaseError, "failed to get stats"))
		return
	}
	dto.Success(c, stats)
}

// GetTask 获取单条生成记录
// @Summary 生成记录详情
// @Tags Tasks
// @Produce json
// @Param tid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.TaskResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/tasks/{tid} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	ctx := c.Request.Context()

	id := c.Param("tid")
	if _, err := uuid.Parse(id); err != nil {
		dto.Fail(c, errors.ErrNotFound.WithDetail("task "+id))
		return
	}

	task, err := h.repo.GetByID(ctx, id)
	if err != nil {
		logger.Error(ctx, "failed to get generation task", err)
		dto.Fail(c, errors.Wrap(err, errors.CodeDatabaseError, "failed to get task"))
		return
	}
	if task == nil {
		dto.Fail(c, errors.ErrNotFound.WithDetail("task "+id))
		return
	}
	dto.Success(c, dto.ToTaskResponse(task))
}

func (h *TaskHandler) enabled(c *gin.Context) bool {
	if h.repo == nil {
		dto.Fail(c, errors.ErrServiceUnavailable.WithDetail("task records require postgres"))
		return false
	}
	return true
}
