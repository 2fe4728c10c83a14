package generation

import (
	"fmt"
	"strings"

	"ai-novel-api/internal/domain/entity"
)

const (
	characterDescriptionMaxWords = 500
	dialogueMaxWords             = 800
)

// 以下构造函数都返回新的请求值，不修改传入的 settings 与 context

// SceneRequest 场景生成：场景目的、氛围、冲突与结果作为重点元素
func SceneRequest(scene entity.TargetScene, nc entity.NarrativeContext, settings entity.GenerationSettings) entity.GenerationRequest {
	s := settings.Clone()
	focus := []string{scene.Purpose, scene.Mood}
	focus = append(focus, scene.Conflicts...)
	focus = append(focus, scene.Outcomes...)
	s.FocusElements = compactStrings(focus)

	c := nc.Clone()
	c.TargetScene = scene.Clone()
	c.CustomInstructions = joinInstructions(nc.CustomInstructions, instructionLines(
		"场景", scene.Title,
		"地点", scene.Location,
		"时间", scene.Time,
		"目的", scene.Purpose,
		"情绪", scene.Mood,
		"冲突", strings.Join(scene.Conflicts, ", "),
		"结果", strings.Join(scene.Outcomes, ", "),
		"参与角色", strings.Join(scene.Characters, ", "),
	))

	return entity.GenerationRequest{Kind: entity.KindScene, Settings: s, Context: c}
}

// CharacterDescriptionRequest 角色描述，篇幅不超过 500
func CharacterDescriptionRequest(ch entity.Character, nc entity.NarrativeContext, settings entity.GenerationSettings) entity.GenerationRequest {
	s := settings.Clone()
	s.TargetWordCount = minPositive(s.TargetWordCount, characterDescriptionMaxWords)
	s.FocusElements = []string{"appearance", "personality", "background", "goals", "skills"}

	age := "未知"
	if ch.Age != nil {
		age = fmt.Sprintf("%d", *ch.Age)
	}
	gender := ch.Gender
	if gender == "" {
		gender = "未知"
	}

	c := nc.Clone()
	c.CustomInstructions = joinInstructions(nc.CustomInstructions, instructionLines(
		"角色名称", ch.Name,
		"角色定位", RoleLabel(ch.Role),
		"年龄", age,
		"性别", gender,
		"外貌", ch.Appearance,
		"性格", ch.Personality,
		"背景", ch.Background,
		"目标", ch.Goals,
		"技能", strings.Join(ch.Skills, ", "),
		"当前状态", ch.CurrentStatus,
	))

	return entity.GenerationRequest{Kind: entity.KindCharacterDescription, Settings: s, Context: c}
}

// DialogueRequest 对话生成，强制包含对话，篇幅不超过 800
func DialogueRequest(participants []entity.Character, situation string, nc entity.NarrativeContext, settings entity.GenerationSettings) entity.GenerationRequest {
	s := settings.Clone()
	s.IncludeDialogue = true
	s.TargetWordCount = minPositive(s.TargetWordCount, dialogueMaxWords)
	s.FocusElements = []string{"character_voice", "conflict", "revelation"}

	names := make([]string, 0, len(participants))
	traits := make([]string, 0, len(participants))
	for _, p := range participants {
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, RoleLabel(p.Role)))
		traits = append(traits, fmt.Sprintf("%s: %s", p.Name, p.Personality))
	}

	c := nc.Clone()
	c.CustomInstructions = joinInstructions(nc.CustomInstructions, instructionLines(
		"对话情况", situation,
		"参与者", strings.Join(names, ", "),
		"角色特点", strings.Join(traits, "; "),
	))

	return entity.GenerationRequest{Kind: entity.KindDialogue, Settings: s, Context: c}
}

// RevisionRequest 按修订目标改写原文
func RevisionRequest(original string, goals []string, nc entity.NarrativeContext, settings entity.GenerationSettings) entity.GenerationRequest {
	s := settings.Clone()
	s.FocusElements = compactStrings(goals)

	c := nc.Clone()
	c.CustomInstructions = joinInstructions(nc.CustomInstructions,
		fmt.Sprintf("修订目标: %s\n请基于以下目标对内容进行修订，保持原有的核心情节和人物设定。", strings.Join(s.FocusElements, ", ")))

	return entity.GenerationRequest{
		Kind:          entity.KindRevision,
		Settings:      s,
		Context:       c,
		SourceContent: original,
	}
}

// WithStyleTemplate 在请求基础上追加风格模仿要求
func WithStyleTemplate(req entity.GenerationRequest, tpl entity.StyleTemplate) entity.GenerationRequest {
	out := req
	out.Settings = req.Settings.Clone()
	out.Settings.Style = tpl.Name
	out.Context = req.Context.Clone()

	var b strings.Builder
	b.WriteString("请模仿以下写作风格:\n")
	b.WriteString(instructionLines(
		"风格名称", tpl.Name,
		"风格描述", tpl.Description,
		"词汇水平", tpl.Characteristics.VocabularyLevel,
		"句式结构", tpl.Characteristics.SentenceStructure,
		"描述风格", tpl.Characteristics.DescriptiveStyle,
		"对话风格", tpl.Characteristics.DialogueStyle,
		"叙述声音", tpl.Characteristics.NarrativeVoice,
	))
	if sample := strings.TrimSpace(tpl.SampleText); sample != "" {
		b.WriteString("\n\n参考文本片段:\n")
		b.WriteString(sample)
	}
	out.Context.CustomInstructions = joinInstructions(req.Context.CustomInstructions, b.String())
	return out
}

// instructionLines 以 "标签: 值" 逐行输出，pairs 按标签、值交替排列
func instructionLines(pairs ...string) string {
	lines := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		lines = append(lines, pairs[i]+": "+pairs[i+1])
	}
	return strings.Join(lines, "\n")
}

func joinInstructions(existing, extra string) string {
	existing = strings.TrimSpace(existing)
	if existing == "" {
		return extra
	}
	return existing + "\n\n" + extra
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// minPositive 未设置目标字数时直接取上限
func minPositive(v, limit int) int {
	if v <= 0 || v > limit {
		return limit
	}
	return v
}
