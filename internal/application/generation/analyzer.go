package generation

import (
	"math"
	"regexp"
	"strings"

	"ai-novel-api/internal/domain/entity"
)

// ReadingUnitsPerMinute 阅读速度
const ReadingUnitsPerMinute = 300

var (
	sentenceTerminatorRe = regexp.MustCompile(`[。！？.!?]`)
	paragraphBreakRe     = regexp.MustCompile(`\n\s*\n`)
)

// Tags 内容标签
type Tags struct {
	KeyElements []string
	Tone        entity.Tone
}

// Classifier 从文本中识别要素与基调
type Classifier interface {
	Classify(text string) Tags
}

type keywordRule struct {
	label    string
	keywords []string
}

type toneRule struct {
	tone     entity.Tone
	keywords []string
}

// KeywordClassifier 基于固定关键词的分类器，按规则顺序输出要素，基调取第一个命中的类别
type KeywordClassifier struct {
	elements []keywordRule
	tones    []toneRule
}

// NewKeywordClassifier 创建默认关键词分类器
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		elements: []keywordRule{
			{label: "对话丰富", keywords: []string{`"`, "“", "”", "说", "道"}},
			{label: "场景描述", keywords: []string{"描述", "环境", "场景", "风景"}},
			{label: "心理描写", keywords: []string{"心理", "想到", "感到", "内心"}},
			{label: "行为描写", keywords: []string{"动作", "走", "看", "跑"}},
			{label: "冲突情节", keywords: []string{"冲突", "战斗", "争论", "对抗"}},
		},
		tones: []toneRule{
			{tone: entity.TonePositive, keywords: []string{"喜悦", "快乐", "兴奋"}},
			{tone: entity.ToneNegative, keywords: []string{"悲伤", "痛苦", "绝望"}},
			{tone: entity.ToneTense, keywords: []string{"紧张", "危险", "惊险"}},
		},
	}
}

// Classify 实现 Classifier
func (c *KeywordClassifier) Classify(text string) Tags {
	tags := Tags{KeyElements: []string{}, Tone: entity.ToneNeutral}
	for _, rule := range c.elements {
		if containsAny(text, rule.keywords) {
			tags.KeyElements = append(tags.KeyElements, rule.label)
		}
	}
	for _, rule := range c.tones {
		if containsAny(text, rule.keywords) {
			tags.Tone = rule.tone
			break
		}
	}
	return tags
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Analyzer 内容分析
type Analyzer struct {
	classifier Classifier
}

// NewAnalyzer 创建分析器，classifier 为空时使用关键词分类器
func NewAnalyzer(classifier Classifier) *Analyzer {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	return &Analyzer{classifier: classifier}
}

// Analyze 计算字数、阅读时长、要素、基调以及句段数量
func (a *Analyzer) Analyze(text string) entity.ContentMetadata {
	wordCount := CountSemanticUnits(text)
	tags := a.classifier.Classify(text)
	keyElements := tags.KeyElements
	if keyElements == nil {
		keyElements = []string{}
	}

	return entity.ContentMetadata{
		WordCount:            wordCount,
		EstimatedReadingTime: ReadingMinutes(wordCount),
		KeyElements:          keyElements,
		Tone:                 tags.Tone.Label(),
		Sentences:            len(sentenceTerminatorRe.FindAllStringIndex(text, -1)),
		Paragraphs:           len(paragraphBreakRe.Split(text, -1)),
	}
}

// ReadingMinutes 按每分钟 300 个语义单元向上取整
func ReadingMinutes(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(wordCount) / ReadingUnitsPerMinute))
}
