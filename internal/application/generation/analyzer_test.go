package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-novel-api/internal/domain/entity"
)

func TestAnalyzer_Analyze(t *testing.T) {
	a := NewAnalyzer(nil)

	text := "他走进房间，感到一阵紧张。\n\n“你来了。”她说道！"
	meta := a.Analyze(text)

	assert.Equal(t, CountSemanticUnits(text), meta.WordCount)
	assert.Equal(t, 1, meta.EstimatedReadingTime)
	assert.Equal(t, []string{"对话丰富", "心理描写", "行为描写"}, meta.KeyElements)
	assert.Equal(t, "紧张", meta.Tone)
	assert.Equal(t, 3, meta.Sentences)
	assert.Equal(t, 2, meta.Paragraphs)
}

func TestAnalyzer_NoTerminators(t *testing.T) {
	meta := NewAnalyzer(nil).Analyze("没有任何标点的一行字")
	assert.Equal(t, 0, meta.Sentences)
	assert.Equal(t, 1, meta.Paragraphs)
	assert.Equal(t, "中性", meta.Tone)
	assert.Empty(t, meta.KeyElements)
	assert.NotNil(t, meta.KeyElements)
}

func TestAnalyzer_EmptyText(t *testing.T) {
	meta := NewAnalyzer(nil).Analyze("")
	assert.Equal(t, 0, meta.WordCount)
	assert.Equal(t, 0, meta.EstimatedReadingTime)
	assert.Equal(t, 0, meta.Sentences)
	assert.Equal(t, 1, meta.Paragraphs)
}

func TestReadingMinutes(t *testing.T) {
	for _, wc := range []int{0, 1, 299, 300, 301, 900, 901} {
		want := 0
		if wc > 0 {
			want = (wc + 299) / 300
		}
		assert.Equal(t, want, ReadingMinutes(wc), "wordCount=%d", wc)
	}
}

func TestKeywordClassifier_ToneOrder(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		text string
		want entity.Tone
	}{
		{"快乐与悲伤交织", entity.TonePositive},
		{"悲伤之中暗藏危险", entity.ToneNegative},
		{"局势危险", entity.ToneTense},
		{"平静的午后", entity.ToneNeutral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.text).Tone, tt.text)
	}
}

func TestKeywordClassifier_ElementOrder(t *testing.T) {
	tags := NewKeywordClassifier().Classify("战斗的场景里，他的内心在说话")
	assert.Equal(t, []string{"对话丰富", "场景描述", "心理描写", "冲突情节"}, tags.KeyElements)
}

type stubClassifier struct{}

func (stubClassifier) Classify(string) Tags {
	return Tags{KeyElements: []string{"custom"}, Tone: entity.TonePositive}
}

func TestAnalyzer_CustomClassifier(t *testing.T) {
	meta := NewAnalyzer(stubClassifier{}).Analyze("任意文本")
	assert.Equal(t, []string{"custom"}, meta.KeyElements)
	assert.Equal(t, "积极", meta.Tone)
}
