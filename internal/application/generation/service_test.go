package generation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-novel-api/internal/domain/entity"
	"ai-novel-api/internal/domain/repository"
	"ai-novel-api/internal/infrastructure/llm"
	apperrors "ai-novel-api/pkg/errors"
)

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, dest any,
	loader func(ctx context.Context) (any, bool, error)) (bool, error) {
	c.mu.Lock()
	raw, ok := c.items[key]
	c.mu.Unlock()
	if ok {
		return true, json.Unmarshal(raw, dest)
	}

	v, store, err := loader(ctx)
	if err != nil {
		return false, err
	}
	raw, err = json.Marshal(v)
	if err != nil {
		return false, err
	}
	if store {
		c.mu.Lock()
		c.items[key] = raw
		c.mu.Unlock()
	}
	return false, json.Unmarshal(raw, dest)
}

type chanRecorder struct {
	tasks chan *entity.GenerationTask
}

func newChanRecorder() *chanRecorder {
	return &chanRecorder{tasks: make(chan *entity.GenerationTask, 4)}
}

func (r *chanRecorder) Record(ctx context.Context, task *entity.GenerationTask) error {
	r.tasks <- task
	return nil
}

func (r *chanRecorder) wait(t *testing.T) *entity.GenerationTask {
	t.Helper()
	select {
	case task := <-r.tasks:
		return task
	case <-time.After(2 * time.Second):
		t.Fatal("task was not recorded")
		return nil
	}
}

func chapterRequest() *entity.GenerationRequest {
	s := baseSettings()
	s.TargetWordCount = 50
	return &entity.GenerationRequest{
		Kind:     entity.KindChapter,
		Settings: s,
		Context:  entity.NarrativeContext{ProjectID: "p1"},
	}
}

func newTestService(t *testing.T, provider llm.ProviderConfig, f ChatModelFactory, cache ResultCache, rec TaskRecorder) *Service {
	t.Helper()
	return NewService(ServiceConfig{Provider: provider, CacheTTL: time.Hour}, newTestInvoker(t, f), nil, cache, rec)
}

func TestService_RejectsInvalidRequest(t *testing.T) {
	svc := newTestService(t, testProvider(), &fakeFactory{}, nil, newChanRecorder())

	req := chapterRequest()
	req.Kind = entity.KindRevision

	_, err := svc.Generate(context.Background(), req, Meta{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidParam))
}

func TestService_FallbackWithoutCredential(t *testing.T) {
	rec := newChanRecorder()
	provider := testProvider()
	provider.APIKey = ""
	svc := newTestService(t, provider, &fakeFactory{}, newMemoryCache(), rec)

	res, err := svc.Generate(context.Background(), chapterRequest(), Meta{RequestID: "req-1"})
	require.NoError(t, err)

	assert.Equal(t, entity.SourceFallback, res.Metadata.Source)
	assert.Equal(t, CountSemanticUnits(res.Content), res.Metadata.WordCount)
	assert.False(t, res.Cached)

	task := rec.wait(t)
	assert.Equal(t, res.TaskID, task.ID)
	assert.Equal(t, "req-1", task.RequestID)
	assert.Equal(t, "p1", task.ProjectID)
	assert.Equal(t, entity.SourceFallback, task.Source)
}

func TestService_CachesModelContent(t *testing.T) {
	chat := &fakeChatModel{reply: &schema.Message{Role: schema.Assistant, Content: "雨夜。他推开门。"}}
	f := &fakeFactory{model: chat}
	rec := newChanRecorder()
	svc := newTestService(t, testProvider(), f, newMemoryCache(), rec)

	first, err := svc.Generate(context.Background(), chapterRequest(), Meta{})
	require.NoError(t, err)
	rec.wait(t)

	second, err := svc.Generate(context.Background(), chapterRequest(), Meta{})
	require.NoError(t, err)
	rec.wait(t)

	assert.Equal(t, 1, chat.calls)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, entity.SourceModel, second.Metadata.Source)
	assert.Equal(t, 2, second.Metadata.Sentences)
}

func TestService_DoesNotCacheFallback(t *testing.T) {
	chat := &fakeChatModel{reply: &schema.Message{Role: schema.Assistant, Content: "  "}}
	f := &fakeFactory{model: chat}
	cache := newMemoryCache()
	svc := newTestService(t, testProvider(), f, cache, LogRecorder{})

	res, err := svc.Generate(context.Background(), chapterRequest(), Meta{})
	require.NoError(t, err)
	assert.Equal(t, entity.SourceFallback, res.Metadata.Source)
	assert.Empty(t, cache.items)

	_, err = svc.Generate(context.Background(), chapterRequest(), Meta{})
	require.NoError(t, err)
	assert.Equal(t, 2, chat.calls)
}

func TestService_CallerCancellation(t *testing.T) {
	chat := &fakeChatModel{block: true}
	svc := newTestService(t, testProvider(), &fakeFactory{model: chat}, nil, LogRecorder{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Generate(ctx, chapterRequest(), Meta{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCacheKey(t *testing.T) {
	p := testProvider()
	s := baseSettings()

	k1 := CacheKey("prompt", s, p)
	assert.Regexp(t, `^ai_gen:[0-9a-f]{64}$`, k1)
	assert.Equal(t, k1, CacheKey("prompt", s, p))

	p.Temperature = 0.2
	assert.NotEqual(t, k1, CacheKey("prompt", s, p))

	s.TargetWordCount = 3000
	assert.NotEqual(t, CacheKey("prompt", baseSettings(), p), CacheKey("prompt", s, p))
}

func TestRepositoryRecorder(t *testing.T) {
	repo := &fakeTaskRepo{}
	task := entity.NewGenerationTask(chapterRequest(), "内容。", entity.ContentMetadata{WordCount: 2})

	require.NoError(t, NewRepositoryRecorder(repo).Record(context.Background(), task))
	assert.Equal(t, []*entity.GenerationTask{task}, repo.created)
}

type fakePublisher struct {
	published []*entity.GenerationTask
}

func (p *fakePublisher) PublishTask(ctx context.Context, task *entity.GenerationTask) (string, error) {
	p.published = append(p.published, task)
	return "1-0", nil
}

func TestStreamRecorder(t *testing.T) {
	pub := &fakePublisher{}
	task := entity.NewGenerationTask(chapterRequest(), "内容。", entity.ContentMetadata{})

	require.NoError(t, NewStreamRecorder(pub).Record(context.Background(), task))
	assert.Len(t, pub.published, 1)
}

type fakeTaskRepo struct {
	created []*entity.GenerationTask
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *entity.GenerationTask) error {
	r.created = append(r.created, task)
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id string) (*entity.GenerationTask, error) {
	for _, t := range r.created {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTaskRepo) ListByProject(ctx context.Context, projectID string, filter *repository.TaskFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationTask], error) {
	return repository.NewPagedResult(r.created, int64(len(r.created)), pagination), nil
}

func (r *fakeTaskRepo) GetStats(ctx context.Context, projectID string) (*repository.TaskStats, error) {
	return &repository.TaskStats{TotalTasks: int64(len(r.created))}, nil
}

type funcRecorder struct {
	record func(ctx context.Context, task *entity.GenerationTask) error
}

func (r funcRecorder) Record(ctx context.Context, task *entity.GenerationTask) error {
	return r.record(ctx, task)
}

func TestService_RecorderFailureDoesNotAffectResponse(t *testing.T) {
	const recordTimeout = 200 * time.Millisecond

	newService := func(rec TaskRecorder) *Service {
		chat := &fakeChatModel{reply: &schema.Message{Role: schema.Assistant, Content: "灯火阑珊。她回头一笑。"}}
		cfg := ServiceConfig{Provider: testProvider(), RecordTimeout: recordTimeout}
		return NewService(cfg, newTestInvoker(t, &fakeFactory{model: chat}), nil, nil, rec)
	}

	want, err := newService(LogRecorder{}).Generate(context.Background(), chapterRequest(), Meta{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		record func(done chan<- error) func(ctx context.Context, task *entity.GenerationTask) error
		err    error
	}{
		{
			name: "error",
			record: func(done chan<- error) func(context.Context, *entity.GenerationTask) error {
				return func(context.Context, *entity.GenerationTask) error {
					err := errors.New("stream unavailable")
					done <- err
					return err
				}
			},
		},
		{
			name: "panic",
			record: func(done chan<- error) func(context.Context, *entity.GenerationTask) error {
				return func(context.Context, *entity.GenerationTask) error {
					defer close(done)
					panic("recorder exploded")
				}
			},
		},
		{
			name: "slow",
			record: func(done chan<- error) func(context.Context, *entity.GenerationTask) error {
				return func(ctx context.Context, _ *entity.GenerationTask) error {
					<-ctx.Done()
					done <- ctx.Err()
					return ctx.Err()
				}
			},
			err: context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan error, 1)
			svc := newService(funcRecorder{record: tt.record(done)})

			start := time.Now()
			got, err := svc.Generate(context.Background(), chapterRequest(), Meta{})
			elapsed := time.Since(start)

			require.NoError(t, err)
			assert.Less(t, elapsed, recordTimeout)
			assert.Equal(t, want.Content, got.Content)
			assert.Equal(t, want.Metadata, got.Metadata)
			assert.NotEmpty(t, got.TaskID)

			select {
			case recErr := <-done:
				if tt.err != nil {
					assert.ErrorIs(t, recErr, tt.err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("recorder was not invoked")
			}
		})
	}
}
