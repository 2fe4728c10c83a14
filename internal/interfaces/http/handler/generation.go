package handler

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ai-novel-api/internal/application/generation"
	"ai-novel-api/internal/domain/entity"
	"ai-novel-api/internal/interfaces/http/dto"
	"ai-novel-api/pkg/errors"
	"ai-novel-api/pkg/logger"
)

// Generator 生成服务，由 generation.Service 实现
type Generator interface {
	Generate(ctx context.Context, req *entity.GenerationRequest, meta generation.Meta) (*generation.Result, error)
}

// GenerationHandler 生成接口处理器
type GenerationHandler struct {
	svc Generator
}

// NewGenerationHandler 创建生成处理器
func NewGenerationHandler(svc Generator) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

// Generate 按请求生成内容
// @Summary 生成小说内容
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.GenerateRequest true "生成请求"
// @Success 200 {object} dto.GenerateResponse
// @Failure 400 {object} dto.GenerateResponse
// @Failure 500 {object} dto.GenerateResponse
// @Router /generate [post]
func (h *GenerationHandler) Generate(c *gin.Context) {
	allowAnyOrigin(c)
	defer recoverInternal(c)

	var body dto.GenerateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, dto.MsgMissingParams, "invalid JSON body")
		return
	}
	if !body.HasRequired() {
		fail(c, http.StatusBadRequest, dto.MsgMissingParams, "type, settings and context are required")
		return
	}

	h.run(c, body.ToEntity(), body.ClientTime())
}

// Options 预检请求
// @Summary CORS 预检
// @Tags Generation
// @Router /generate [options]
func (h *GenerationHandler) Options(c *gin.Context) {
	allowAnyOrigin(c)
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
	c.Status(http.StatusNoContent)
}

// GenerateScene 按场景描述生成
// @Summary 生成场景
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.SceneGenerateRequest true "场景请求"
// @Success 200 {object} dto.GenerateResponse
// @Router /v1/generate/scene [post]
func (h *GenerationHandler) GenerateScene(c *gin.Context) {
	var body dto.SceneGenerateRequest
	h.build(c, &body, &body.BuilderBase, func(nc entity.NarrativeContext, s entity.GenerationSettings) (entity.GenerationRequest, string) {
		if body.Scene == nil {
			return entity.GenerationRequest{}, "scene is required"
		}
		return generation.SceneRequest(body.Scene.ToEntity(), nc, s), ""
	})
}

// GenerateCharacter 生成角色描写
// @Summary 生成角色描写
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.CharacterGenerateRequest true "角色请求"
// @Success 200 {object} dto.GenerateResponse
// @Router /v1/generate/character [post]
func (h *GenerationHandler) GenerateCharacter(c *gin.Context) {
	var body dto.CharacterGenerateRequest
	h.build(c, &body, &body.BuilderBase, func(nc entity.NarrativeContext, s entity.GenerationSettings) (entity.GenerationRequest, string) {
		if body.Character == nil || strings.TrimSpace(body.Character.Name) == "" {
			return entity.GenerationRequest{}, "character.name is required"
		}
		return generation.CharacterDescriptionRequest(body.Character.ToEntity(), nc, s), ""
	})
}

// GenerateDialogue 生成对话
// @Summary 生成对话
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.DialogueGenerateRequest true "对话请求"
// @Success 200 {object} dto.GenerateResponse
// @Router /v1/generate/dialogue [post]
func (h *GenerationHandler) GenerateDialogue(c *gin.Context) {
	var body dto.DialogueGenerateRequest
	h.build(c, &body, &body.BuilderBase, func(nc entity.NarrativeContext, s entity.GenerationSettings) (entity.GenerationRequest, string) {
		if len(body.Participants) == 0 {
			return entity.GenerationRequest{}, "participants is required"
		}
		participants := make([]entity.Character, 0, len(body.Participants))
		for i := range body.Participants {
			participants = append(participants, body.Participants[i].ToEntity())
		}
		return generation.DialogueRequest(participants, body.Situation, nc, s), ""
	})
}

// GenerateRevision 按修订目标改写原文
// @Summary 修订内容
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.RevisionGenerateRequest true "修订请求"
// @Success 200 {object} dto.GenerateResponse
// @Router /v1/generate/revision [post]
func (h *GenerationHandler) GenerateRevision(c *gin.Context) {
	var body dto.RevisionGenerateRequest
	h.build(c, &body, &body.BuilderBase, func(nc entity.NarrativeContext, s entity.GenerationSettings) (entity.GenerationRequest, string) {
		return generation.RevisionRequest(body.Original, body.Goals, nc, s), ""
	})
}

type buildFunc func(nc entity.NarrativeContext, settings entity.GenerationSettings) (entity.GenerationRequest, string)

// build 绑定请求体、应用预设与风格模板后执行生成
func (h *GenerationHandler) build(c *gin.Context, body any, base *dto.BuilderBase, fn buildFunc) {
	allowAnyOrigin(c)
	defer recoverInternal(c)

	if err := c.ShouldBindJSON(body); err != nil {
		fail(c, http.StatusBadRequest, dto.MsgMissingParams, "invalid JSON body")
		return
	}

	settings := base.Settings.ToEntity()
	if base.Preset != "" {
		preset, ok := generation.ApplyPreset(settings, base.Preset)
		if !ok {
			fail(c, http.StatusBadRequest, dto.MsgMissingParams,
				"unknown preset, expected one of: "+strings.Join(generation.PresetNames(), ", "))
			return
		}
		settings = preset
	}

	req, problem := fn(base.Context.ToEntity(), settings)
	if problem != "" {
		fail(c, http.StatusBadRequest, dto.MsgMissingParams, problem)
		return
	}
	if base.Style != nil {
		req = generation.WithStyleTemplate(req, base.Style.ToEntity())
	}

	h.run(c, &req, nil)
}

func (h *GenerationHandler) run(c *gin.Context, req *entity.GenerationRequest, clientTime *time.Time) {
	result, err := h.svc.Generate(c.Request.Context(), req, generation.Meta{
		RequestID:       c.GetString("request_id"),
		ClientTimestamp: clientTime,
	})
	if err != nil {
		handleGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GenerateResponse{
		Success:  true,
		Content:  result.Content,
		Metadata: &result.Metadata,
		TaskID:   result.TaskID,
	})
}

func handleGenerationError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	switch {
	case errors.HasCode(err, errors.CodeInvalidParam):
		fail(c, http.StatusBadRequest, dto.MsgMissingParams, errors.AsAppError(err).Detail)
	case errors.HasCode(err, errors.CodeGenerationFailed):
		logger.Warn(ctx, "generation returned empty content")
		fail(c, http.StatusInternalServerError, dto.MsgGenerationFailed, "")
	case stderrors.Is(err, context.Canceled):
		logger.Info(ctx, "generation cancelled by client")
		fail(c, http.StatusInternalServerError, dto.MsgInternalError, "")
	default:
		logger.Error(ctx, "generation failed", err)
		fail(c, http.StatusInternalServerError, dto.MsgInternalError, "")
	}
}

func fail(c *gin.Context, status int, msg, detail string) {
	c.AbortWithStatusJSON(status, dto.GenerateResponse{
		Success: false,
		Error:   msg,
		Detail:  detail,
	})
}

// recoverInternal panic 转为 500 服务器内部错误，堆栈只写日志
func recoverInternal(c *gin.Context) {
	if r := recover(); r != nil {
		logger.Error(c.Request.Context(), "generation handler panic",
			fmt.Errorf("%v", r),
			"stack", string(debug.Stack()),
		)
		fail(c, http.StatusInternalServerError, dto.MsgInternalError, "")
	}
}

func allowAnyOrigin(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
}
