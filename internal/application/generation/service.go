package generation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"ai-novel-api/internal/domain/entity"
	"ai-novel-api/internal/infrastructure/llm"
	"ai-novel-api/pkg/errors"
	"ai-novel-api/pkg/logger"
	"ai-novel-api/pkg/metrics"
)

// CacheKeyPrefix 生成结果缓存键前缀
const CacheKeyPrefix = "ai_gen:"

// ResultCache 生成结果缓存端口，由 redis.Cache 实现
// loader 返回 store=false 时结果不写入缓存；hit 表示结果来自缓存
type ResultCache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, dest any,
		loader func(ctx context.Context) (value any, store bool, err error)) (hit bool, err error)
}

// ServiceConfig 生成服务配置
type ServiceConfig struct {
	Provider      llm.ProviderConfig
	CacheTTL      time.Duration
	RecordTimeout time.Duration
}

// Result 一次生成的响应内容
type Result struct {
	Content  string
	Metadata entity.ContentMetadata
	TaskID   string
	Cached   bool
}

// Meta 请求附带的留档信息
type Meta struct {
	RequestID       string
	ClientTimestamp *time.Time
}

// Service 串联提示词构建、调用、分析与任务记录
type Service struct {
	cfg      ServiceConfig
	invoker  *Invoker
	analyzer *Analyzer
	cache    ResultCache
	recorder TaskRecorder
	now      func() time.Time
}

// NewService 创建生成服务，cache 与 recorder 可为空
func NewService(cfg ServiceConfig, invoker *Invoker, analyzer *Analyzer, cache ResultCache, recorder TaskRecorder) *Service {
	if analyzer == nil {
		analyzer = NewAnalyzer(nil)
	}
	if recorder == nil {
		recorder = LogRecorder{}
	}
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = 3 * time.Second
	}
	return &Service{
		cfg:      cfg,
		invoker:  invoker,
		analyzer: analyzer,
		cache:    cache,
		recorder: recorder,
		now:      time.Now,
	}
}

// cachedGeneration 缓存中只保存模型生成的内容
type cachedGeneration struct {
	Content          string `json:"content"`
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

// Generate 执行一次生成
func (s *Service) Generate(ctx context.Context, req *entity.GenerationRequest, meta Meta) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.ErrInvalidParam.WithDetail(err.Error())
	}

	start := s.now()
	kind := string(req.Kind)
	if req.Context.ProjectID != "" {
		ctx = logger.WithContext(ctx, logger.ProjectIDKey, req.Context.ProjectID)
	}

	prompt := BuildPrompt(req.Kind, req.Settings, req.Context, req.SourceContent)

	out, cached, err := s.generate(ctx, prompt, req.Settings)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues(kind, "", "aborted").Inc()
		return nil, err
	}
	if out.Content == "" {
		metrics.GenerationTotal.WithLabelValues(kind, string(out.Source), "failed").Inc()
		return nil, errors.ErrGenerationFailed
	}

	md := s.analyzer.Analyze(out.Content)
	md.Source = out.Source

	elapsed := s.now().Sub(start)
	metrics.GenerationTotal.WithLabelValues(kind, string(out.Source), "success").Inc()
	metrics.GenerationDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	metrics.GenerationWordCount.WithLabelValues(kind).Observe(float64(md.WordCount))

	task := entity.NewGenerationTask(req, out.Content, md)
	task.SetLLMMetrics(out.Model, out.PromptTokens, out.CompletionTokens)
	task.DurationMs = elapsed.Milliseconds()
	task.RequestID = meta.RequestID
	task.ClientTimestamp = meta.ClientTimestamp
	s.recordAsync(ctx, task)

	logger.Info(ctx, "generation completed",
		"kind", kind,
		"source", out.Source,
		"cached", cached,
		"word_count", md.WordCount,
		"target_word_count", req.Settings.TargetWordCount,
		"duration_ms", task.DurationMs,
	)

	return &Result{
		Content:  out.Content,
		Metadata: md,
		TaskID:   task.ID,
		Cached:   cached,
	}, nil
}

func (s *Service) generate(ctx context.Context, prompt string, settings entity.GenerationSettings) (*Output, bool, error) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 || !s.cfg.Provider.HasCredential() {
		out, err := s.invoker.Generate(ctx, prompt, settings, s.cfg.Provider)
		return out, false, err
	}

	var (
		fresh  *Output
		cached cachedGeneration
	)
	key := CacheKey(prompt, settings, s.cfg.Provider)
	hit, err := s.cache.GetOrLoad(ctx, key, s.cfg.CacheTTL, &cached, func(ctx context.Context) (any, bool, error) {
		out, err := s.invoker.Generate(ctx, prompt, settings, s.cfg.Provider)
		if err != nil {
			return nil, false, err
		}
		fresh = out
		return cachedGeneration{
			Content:          out.Content,
			Model:            out.Model,
			PromptTokens:     out.PromptTokens,
			CompletionTokens: out.CompletionTokens,
		}, out.Source == entity.SourceModel, nil
	})
	if err != nil {
		return nil, false, err
	}

	if hit {
		metrics.GenerationCacheTotal.WithLabelValues("hit").Inc()
		return &Output{
			Content:          cached.Content,
			Source:           entity.SourceModel,
			Model:            cached.Model,
			PromptTokens:     cached.PromptTokens,
			CompletionTokens: cached.CompletionTokens,
		}, true, nil
	}
	metrics.GenerationCacheTotal.WithLabelValues("miss").Inc()

	// 并发的同键请求共享了领头请求的结果
	if fresh == nil {
		src := entity.SourceModel
		if cached.Model == "" {
			src = entity.SourceFallback
		}
		return &Output{
			Content:          cached.Content,
			Source:           src,
			Model:            cached.Model,
			PromptTokens:     cached.PromptTokens,
			CompletionTokens: cached.CompletionTokens,
		}, false, nil
	}
	return fresh, false, nil
}

// recordAsync 脱离请求生命周期异步记录，不阻塞响应
func (s *Service) recordAsync(ctx context.Context, task *entity.GenerationTask) {
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RecordTimeout)
	go func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				logger.FromContext(recCtx).Error("task recorder panicked", "panic", r, "task_id", task.ID)
			}
		}()
		if err := s.recorder.Record(recCtx, task); err != nil {
			logger.Warn(recCtx, "failed to record generation task",
				"task_id", task.ID,
				"error", err.Error(),
			)
		}
	}()
}

// CacheKey 由提示词、模型与解码参数计算缓存键
func CacheKey(prompt string, settings entity.GenerationSettings, provider llm.ProviderConfig) string {
	params, _ := json.Marshal([]any{
		provider.Model,
		provider.Temperature,
		provider.TopP,
		provider.FrequencyPenalty,
		provider.PresencePenalty,
		MaxTokens(settings.TargetWordCount, provider.MaxTokensCap),
	})
	h := sha256.New()
	h.Write(params)
	h.Write([]byte{'\n'})
	h.Write([]byte(prompt))
	return CacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
