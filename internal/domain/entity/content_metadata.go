package entity

// ContentSource 生成内容来源
type ContentSource string

const (
	SourceModel    ContentSource = "model"
	SourceFallback ContentSource = "fallback"
)

// Tone 情感基调
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneTense    Tone = "tense"
	ToneNeutral  Tone = "neutral"
)

var toneLabels = map[Tone]string{
	TonePositive: "积极",
	ToneNegative: "消极",
	ToneTense:    "紧张",
	ToneNeutral:  "中性",
}

// Label 中文显示标签，未知值原样返回
func (t Tone) Label() string {
	if label, ok := toneLabels[t]; ok {
		return label
	}
	return string(t)
}

// ContentMetadata 生成内容的统计与标签
type ContentMetadata struct {
	WordCount            int           `json:"wordCount"`
	EstimatedReadingTime int           `json:"estimatedReadingTime"`
	KeyElements          []string      `json:"keyElements"`
	Tone                 string        `json:"tone"`
	Sentences            int           `json:"sentences"`
	Paragraphs           int           `json:"paragraphs"`
	Source               ContentSource `json:"source,omitempty"`
}
