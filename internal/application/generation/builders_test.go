package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-novel-api/internal/domain/entity"
)

func TestSceneRequest(t *testing.T) {
	scene := entity.TargetScene{
		Title:      "雨夜对峙",
		Location:   "旧码头",
		Time:       "深夜",
		Purpose:    "揭露身份",
		Mood:       "压抑",
		Characters: []string{"李明", "陈默"},
		Conflicts:  []string{"信任破裂"},
		Outcomes:   []string{"同盟瓦解"},
	}
	base := baseSettings()

	req := SceneRequest(scene, entity.NarrativeContext{ProjectID: "p1"}, base)

	assert.Equal(t, entity.KindScene, req.Kind)
	assert.Equal(t, []string{"揭露身份", "压抑", "信任破裂", "同盟瓦解"}, req.Settings.FocusElements)
	require.NotNil(t, req.Context.TargetScene)
	assert.Equal(t, "雨夜对峙", req.Context.TargetScene.Title)
	assert.Equal(t, "p1", req.Context.ProjectID)
	assert.Equal(t,
		"场景: 雨夜对峙\n地点: 旧码头\n时间: 深夜\n目的: 揭露身份\n情绪: 压抑\n冲突: 信任破裂\n结果: 同盟瓦解\n参与角色: 李明, 陈默",
		req.Context.CustomInstructions)
	assert.Nil(t, base.FocusElements)
	require.NoError(t, req.Validate())
}

func TestSceneRequest_DoesNotAliasScene(t *testing.T) {
	scene := entity.TargetScene{Conflicts: []string{"a"}}
	req := SceneRequest(scene, entity.NarrativeContext{}, baseSettings())

	req.Context.TargetScene.Conflicts[0] = "b"
	assert.Equal(t, "a", scene.Conflicts[0])
}

func TestCharacterDescriptionRequest(t *testing.T) {
	age := 28
	ch := entity.Character{
		Name:          "李明",
		Role:          entity.RoleProtagonist,
		Age:           &age,
		Appearance:    "瘦高",
		Personality:   "沉稳",
		Background:    "退伍军人",
		Goals:         "查明真相",
		CurrentStatus: "负伤",
		Skills:        []string{"格斗", "追踪"},
	}

	req := CharacterDescriptionRequest(ch, entity.NarrativeContext{}, baseSettings())

	assert.Equal(t, entity.KindCharacterDescription, req.Kind)
	assert.Equal(t, 500, req.Settings.TargetWordCount)
	assert.Equal(t, []string{"appearance", "personality", "background", "goals", "skills"}, req.Settings.FocusElements)
	assert.Equal(t,
		"角色名称: 李明\n角色定位: 主角\n年龄: 28\n性别: 未知\n外貌: 瘦高\n性格: 沉稳\n背景: 退伍军人\n目标: 查明真相\n技能: 格斗, 追踪\n当前状态: 负伤",
		req.Context.CustomInstructions)
}

func TestCharacterDescriptionRequest_KeepsSmallerTarget(t *testing.T) {
	s := baseSettings()
	s.TargetWordCount = 300

	req := CharacterDescriptionRequest(entity.Character{Name: "甲"}, entity.NarrativeContext{}, s)
	assert.Equal(t, 300, req.Settings.TargetWordCount)
	assert.Contains(t, req.Context.CustomInstructions, "年龄: 未知")
}

func TestDialogueRequest(t *testing.T) {
	s := baseSettings()
	s.IncludeDialogue = false
	participants := []entity.Character{
		{Name: "李明", Role: entity.RoleProtagonist, Personality: "沉稳"},
		{Name: "陈默", Role: entity.RoleAntagonist, Personality: "狡黠"},
	}

	req := DialogueRequest(participants, "审讯室对话", entity.NarrativeContext{}, s)

	assert.Equal(t, entity.KindDialogue, req.Kind)
	assert.True(t, req.Settings.IncludeDialogue)
	assert.Equal(t, 800, req.Settings.TargetWordCount)
	assert.Equal(t, []string{"character_voice", "conflict", "revelation"}, req.Settings.FocusElements)
	assert.Equal(t,
		"对话情况: 审讯室对话\n参与者: 李明 (主角), 陈默 (反派)\n角色特点: 李明: 沉稳; 陈默: 狡黠",
		req.Context.CustomInstructions)
	assert.False(t, s.IncludeDialogue)
}

func TestRevisionRequest(t *testing.T) {
	req := RevisionRequest("原文。", []string{"加强冲突", "精简描写"}, entity.NarrativeContext{}, baseSettings())

	assert.Equal(t, entity.KindRevision, req.Kind)
	assert.Equal(t, "原文。", req.SourceContent)
	assert.Equal(t, []string{"加强冲突", "精简描写"}, req.Settings.FocusElements)
	assert.Equal(t,
		"修订目标: 加强冲突, 精简描写\n请基于以下目标对内容进行修订，保持原有的核心情节和人物设定。",
		req.Context.CustomInstructions)
	require.NoError(t, req.Validate())
}

func TestBuilders_PreserveExistingInstructions(t *testing.T) {
	nc := entity.NarrativeContext{CustomInstructions: "保持悬念"}

	req := RevisionRequest("原文。", []string{"润色"}, nc, baseSettings())
	assert.Equal(t,
		"保持悬念\n\n修订目标: 润色\n请基于以下目标对内容进行修订，保持原有的核心情节和人物设定。",
		req.Context.CustomInstructions)
	assert.Equal(t, "保持悬念", nc.CustomInstructions)
}

func TestWithStyleTemplate(t *testing.T) {
	base := entity.GenerationRequest{
		Kind:     entity.KindChapter,
		Settings: baseSettings(),
		Context:  entity.NarrativeContext{CustomInstructions: "多写环境"},
	}
	tpl := entity.StyleTemplate{
		Name:        "冷硬派",
		Description: "简洁克制",
		SampleText:  "雨没有停。",
		Characteristics: entity.StyleCharacteristics{
			VocabularyLevel:   "简单",
			SentenceStructure: "短句",
			DescriptiveStyle:  "白描",
			DialogueStyle:     "简短",
			NarrativeVoice:    "冷静",
		},
	}

	out := WithStyleTemplate(base, tpl)

	assert.Equal(t, "冷硬派", out.Settings.Style)
	assert.Equal(t, "悬疑", base.Settings.Style)
	assert.Equal(t,
		"多写环境\n\n请模仿以下写作风格:\n风格名称: 冷硬派\n风格描述: 简洁克制\n词汇水平: 简单\n句式结构: 短句\n描述风格: 白描\n对话风格: 简短\n叙述声音: 冷静\n\n参考文本片段:\n雨没有停。",
		out.Context.CustomInstructions)
	assert.Equal(t, "多写环境", base.Context.CustomInstructions)
}

func TestApplyPreset(t *testing.T) {
	base := baseSettings()

	got, ok := ApplyPreset(base, PresetAtmospheric)
	require.True(t, ok)
	assert.Equal(t, 1200, got.TargetWordCount)
	assert.Equal(t, "descriptive", got.Style)
	assert.Equal(t, entity.PacingSlow, got.Pacing)
	assert.False(t, got.IncludeDialogue)
	assert.Equal(t, []string{"setting", "mood", "symbolism", "internal_thoughts"}, got.FocusElements)

	got.FocusElements[0] = "changed"
	again, _ := Preset(PresetAtmospheric)
	assert.Equal(t, "setting", again.FocusElements[0])

	_, ok = ApplyPreset(base, "UNKNOWN")
	assert.False(t, ok)
}

func TestPresetNames(t *testing.T) {
	assert.Equal(t, []string{PresetAtmospheric, PresetDetailedNarrative, PresetDialogueHeavy, PresetFastDraft}, PresetNames())
}
