package generation

import (
	"fmt"
	"strings"

	"ai-novel-api/internal/domain/entity"
)

const (
	promptPreamble = "你是一个专业的小说创作助手。请根据以下要求生成高质量的中文小说内容。\n\n"

	// recapChapters 前文回顾只取最近的章节数
	recapChapters = 2
	// recapRunes 每章回顾截取的字符数
	recapRunes = 300
)

// BuildPrompt 按固定顺序拼接提示词，缺失的数据对应的段落整体省略
func BuildPrompt(kind entity.GenerationKind, settings entity.GenerationSettings, nc entity.NarrativeContext, sourceContent string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)

	writeWorldSetting(&b, nc.WorldSetting)
	writeCharacters(&b, nc.Characters)
	writeTargetScene(&b, nc.TargetScene)
	writeRecap(&b, nc.PreviousChapters)
	writeRequirements(&b, kind, settings)

	if nc.CustomInstructions != "" {
		fmt.Fprintf(&b, "\n## 特殊要求\n%s\n", nc.CustomInstructions)
	}

	if kind == entity.KindRevision && sourceContent != "" {
		fmt.Fprintf(&b, "\n## 原始内容\n%s\n", sourceContent)
		b.WriteString("\n请根据上述要求对原始内容进行修订和改进。\n")
	} else {
		fmt.Fprintf(&b, "\n请根据上述设定和要求创作%s内容。要求语言流畅、情节连贯、人物形象鲜明。\n", KindLabel(kind))
	}
	return b.String()
}

func writeWorldSetting(b *strings.Builder, ws *entity.WorldSetting) {
	if ws == nil {
		return
	}
	b.WriteString("## 世界设定\n")
	fmt.Fprintf(b, "名称: %s\n", ws.Name)
	fmt.Fprintf(b, "描述: %s\n", ws.Description)
	fmt.Fprintf(b, "时代: %s\n", ws.Era)
	fmt.Fprintf(b, "科技水平: %s\n", ws.TechnologyLevel)
	if ws.MagicSystem != "" {
		fmt.Fprintf(b, "魔法体系: %s\n", ws.MagicSystem)
	}
	fmt.Fprintf(b, "地理环境: %s\n", ws.Geography)
	fmt.Fprintf(b, "政治制度: %s\n", ws.Politics)
	fmt.Fprintf(b, "经济体系: %s\n", ws.Economy)
	fmt.Fprintf(b, "文化特色: %s\n", ws.Culture)
	fmt.Fprintf(b, "历史背景: %s\n\n", ws.History)
}

func writeCharacters(b *strings.Builder, chars []entity.Character) {
	if len(chars) == 0 {
		return
	}
	b.WriteString("## 主要角色\n")
	for _, c := range chars {
		fmt.Fprintf(b, "### %s (%s)\n", c.Name, RoleLabel(c.Role))
		fmt.Fprintf(b, "外貌: %s\n", c.Appearance)
		fmt.Fprintf(b, "性格: %s\n", c.Personality)
		fmt.Fprintf(b, "背景: %s\n", c.Background)
		fmt.Fprintf(b, "目标: %s\n", c.Goals)
		fmt.Fprintf(b, "当前状态: %s\n", c.CurrentStatus)
		if len(c.Skills) > 0 {
			fmt.Fprintf(b, "技能: %s\n", strings.Join(c.Skills, ", "))
		}
		b.WriteString("\n")
	}
}

func writeTargetScene(b *strings.Builder, s *entity.TargetScene) {
	if s == nil {
		return
	}
	b.WriteString("## 目标场景\n")
	fmt.Fprintf(b, "标题: %s\n", s.Title)
	fmt.Fprintf(b, "描述: %s\n", s.Description)
	fmt.Fprintf(b, "地点: %s\n", s.Location)
	fmt.Fprintf(b, "时间: %s\n", s.Time)
	fmt.Fprintf(b, "目的: %s\n", s.Purpose)
	fmt.Fprintf(b, "情绪氛围: %s\n", s.Mood)
	if len(s.Conflicts) > 0 {
		fmt.Fprintf(b, "冲突元素: %s\n", strings.Join(s.Conflicts, ", "))
	}
	if len(s.Outcomes) > 0 {
		fmt.Fprintf(b, "预期结果: %s\n", strings.Join(s.Outcomes, ", "))
	}
	b.WriteString("\n")
}

// writeRecap 章节编号按在全部前文中的真实位置计算
func writeRecap(b *strings.Builder, chapters []string) {
	if len(chapters) == 0 {
		return
	}
	b.WriteString("## 前文回顾\n")
	recent := chapters
	if len(recent) > recapChapters {
		recent = recent[len(recent)-recapChapters:]
	}
	for i, chapter := range recent {
		fmt.Fprintf(b, "### 第 %d 章节摘要\n", len(chapters)-len(recent)+i+1)
		fmt.Fprintf(b, "%s...\n\n", truncateRunes(chapter, recapRunes))
	}
}

func writeRequirements(b *strings.Builder, kind entity.GenerationKind, s entity.GenerationSettings) {
	b.WriteString("## 写作要求\n")
	fmt.Fprintf(b, "类型: %s\n", KindLabel(kind))
	fmt.Fprintf(b, "视角: %s\n", PerspectiveLabel(s.Perspective))
	fmt.Fprintf(b, "时态: %s\n", TenseLabel(s.Tense))
	fmt.Fprintf(b, "风格: %s\n", s.Style)
	fmt.Fprintf(b, "语调: %s\n", s.Tone)
	fmt.Fprintf(b, "目标字数: %d\n", s.TargetWordCount)
	fmt.Fprintf(b, "描述程度: %s\n", DescriptionLabel(s.DescriptionLevel))
	fmt.Fprintf(b, "节奏: %s\n", PacingLabel(s.Pacing))
	fmt.Fprintf(b, "是否包含对话: %s\n", yesNo(s.IncludeDialogue))
	if len(s.FocusElements) > 0 {
		fmt.Fprintf(b, "重点元素: %s\n", strings.Join(s.FocusElements, ", "))
	}
}

func yesNo(v bool) string {
	if v {
		return "是"
	}
	return "否"
}
