// Package eino 为 Eino 组件调用挂接指标与链路追踪
package eino

import (
	"context"
	"sync"

	einocallbacks "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
)

var initOnce sync.Once

// Init 注册全局 ChatModel 回调，进程内只执行一次
func Init() {
	initOnce.Do(func() {
		handler := cbtemplate.NewHandlerHelper().
			ChatModel(newChatModelCallbackHandler()).
			Handler()
		einocallbacks.AppendGlobalHandlers(handler)
	})
}

// WithChatModelRun 为单独调用的 ChatModel 初始化回调管理器，使全局回调生效
func WithChatModelRun(ctx context.Context, name string) context.Context {
	return einocallbacks.InitCallbacks(ctx, &einocallbacks.RunInfo{
		Name:      name,
		Type:      "OpenAI",
		Component: components.ComponentOfChatModel,
	})
}
