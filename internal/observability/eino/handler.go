package eino

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ai-novel-api/pkg/metrics"
)

type callStateKey struct{}

// callState OnStart 写入，OnEnd/OnError 读取
type callState struct {
	start time.Time
	model string
	span  trace.Span
}

func newChatModelCallbackHandler() *cbtemplate.ModelCallbackHandler {
	return &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			modelName := modelNameFromInput(input)
			attrs := []attribute.KeyValue{
				attribute.String("llm.model", modelName),
			}
			if info != nil {
				attrs = append(attrs, attribute.String("eino.node_name", info.Name))
			}

			ctx, span := otel.Tracer("eino").Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
			return context.WithValue(ctx, callStateKey{}, &callState{
				start: time.Now(),
				model: modelName,
				span:  span,
			})
		},

		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			st := stateFrom(ctx)
			modelName := modelNameFromOutput(output)
			if modelName == "" {
				modelName = st.model
			}

			metrics.LLMCallTotal.WithLabelValues(modelName, "success").Inc()
			if !st.start.IsZero() {
				metrics.LLMCallDuration.WithLabelValues(modelName).Observe(time.Since(st.start).Seconds())
			}

			if output != nil && output.TokenUsage != nil {
				metrics.LLMTokensUsed.WithLabelValues(modelName, "prompt").Add(float64(output.TokenUsage.PromptTokens))
				metrics.LLMTokensUsed.WithLabelValues(modelName, "completion").Add(float64(output.TokenUsage.CompletionTokens))
				if st.span != nil {
					st.span.SetAttributes(
						attribute.Int("llm.prompt_tokens", output.TokenUsage.PromptTokens),
						attribute.Int("llm.completion_tokens", output.TokenUsage.CompletionTokens),
					)
				}
			}
			if st.span != nil {
				st.span.End()
			}
			return ctx
		},

		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			st := stateFrom(ctx)

			metrics.LLMCallTotal.WithLabelValues(st.model, "error").Inc()
			if !st.start.IsZero() {
				metrics.LLMCallDuration.WithLabelValues(st.model).Observe(time.Since(st.start).Seconds())
			}
			if st.span != nil {
				st.span.RecordError(err)
				st.span.SetStatus(codes.Error, err.Error())
				st.span.End()
			}
			return ctx
		},
	}
}

func stateFrom(ctx context.Context) *callState {
	if st, ok := ctx.Value(callStateKey{}).(*callState); ok && st != nil {
		return st
	}
	return &callState{}
}

func modelNameFromInput(in *model.CallbackInput) string {
	if in == nil || in.Config == nil {
		return ""
	}
	return in.Config.Model
}

func modelNameFromOutput(out *model.CallbackOutput) string {
	if out == nil || out.Config == nil {
		return ""
	}
	return out.Config.Model
}
