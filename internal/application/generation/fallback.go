package generation

import (
	"errors"
	"math/rand/v2"
	"strings"

	"ai-novel-api/internal/domain/entity"
)

// DefaultCorpus 兜底生成使用的示例段落
var DefaultCorpus = []string{
	"夜幕降临，城市中的霓虹灯开始闪烁。李明走在熟悉的街道上，心中却涌起一股莫名的不安。今晚注定不会平静。他停下脚步，回头望了一眼，确认没有人跟踪后，快步走向那栋老旧的公寓楼。",
	"古老的书卷在微风中轻轻翻动，上面记载着失落已久的法术。艾莉亚小心翼翼地伸出手，触碰那泛着微光的文字。瞬间，一股暖流从指尖传遍全身，她感到体内有什么东西正在觉醒。",
	"会议室里一片寂静，所有人的目光都聚焦在那份刚刚递过来的报告上。张总缓缓抬起头，眼中闪过一丝不易察觉的担忧。\"各位，\"他的声音低沉而有力，\"我们面临的不仅仅是一次商业挑战。\"",
	"山谷中回荡着剑刃碰撞的声音，两个身影在月光下交错而过。林风紧握手中的长剑，汗水顺着脸颊滴落。对面的黑衣人实力深不可测，这场决斗将决定整个王国的命运。",
}

const (
	passageSeparator = "\n\n"
	// overshootRatio 超过目标字数该比例时按句裁剪
	overshootRatio = 1.2
)

// ErrEmptyCorpus 语料为空或不含任何语义单元
var ErrEmptyCorpus = errors.New("fallback corpus has no countable passage")

// Synthesizer 在模型不可用时用固定语料拼出近似目标字数的占位内容
type Synthesizer struct {
	corpus []string
	intn   func(n int) int
}

// NewSynthesizer 创建兜底生成器，intn 为空时使用 math/rand/v2
// 每个段落至少包含一个语义单元，保证扩写循环必然结束
func NewSynthesizer(corpus []string, intn func(n int) int) (*Synthesizer, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}
	for _, passage := range corpus {
		if CountSemanticUnits(passage) == 0 {
			return nil, ErrEmptyCorpus
		}
	}
	if intn == nil {
		intn = rand.IntN
	}
	return &Synthesizer{
		corpus: append([]string(nil), corpus...),
		intn:   intn,
	}, nil
}

// NewDefaultSynthesizer 使用默认语料
func NewDefaultSynthesizer() *Synthesizer {
	s, err := NewSynthesizer(DefaultCorpus, nil)
	if err != nil {
		panic(err)
	}
	return s
}

// Synthesize 随机拼接段落直到达到目标字数，明显超出时按句回收
func (s *Synthesizer) Synthesize(settings entity.GenerationSettings) string {
	target := settings.TargetWordCount
	if target < 1 {
		target = 1
	}

	var b strings.Builder
	b.WriteString(s.pick())
	count := CountSemanticUnits(b.String())
	for count < target {
		passage := s.pick()
		b.WriteString(passageSeparator)
		b.WriteString(passage)
		count += CountSemanticUnits(passage)
	}

	content := b.String()
	if float64(count) > float64(target)*overshootRatio {
		content = trimToTarget(content, target)
	}
	return content
}

func (s *Synthesizer) pick() string {
	return s.corpus[s.intn(len(s.corpus))]
}

// trimToTarget 逐句累加，在加入下一句会超出目标前停止
// 首句就超出目标时保留首句，避免返回空内容
func trimToTarget(content string, target int) string {
	var b strings.Builder
	total := 0
	first := ""
	for _, sentence := range sentenceTerminatorRe.Split(content, -1) {
		n := CountSemanticUnits(sentence)
		if n == 0 {
			continue
		}
		if first == "" {
			first = sentence
		}
		if total+n > target {
			break
		}
		b.WriteString(sentence)
		b.WriteString("。")
		total += n
	}
	if b.Len() == 0 && first != "" {
		return first + "。"
	}
	return b.String()
}
