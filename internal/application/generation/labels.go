package generation

import "ai-novel-api/internal/domain/entity"

var roleLabels = map[entity.CharacterRole]string{
	entity.RoleProtagonist: "主角",
	entity.RoleAntagonist:  "反派",
	entity.RoleSupporting:  "配角",
	entity.RoleMinor:       "次要角色",
}

var kindLabels = map[entity.GenerationKind]string{
	entity.KindChapter:              "章节",
	entity.KindScene:                "场景",
	entity.KindCharacterDescription: "角色描述",
	entity.KindDialogue:             "对话",
	entity.KindRevision:             "修订",
}

var perspectiveLabels = map[entity.Perspective]string{
	entity.PerspectiveFirstPerson:           "第一人称",
	entity.PerspectiveSecondPerson:          "第二人称",
	entity.PerspectiveThirdPersonLimited:    "第三人称限知",
	entity.PerspectiveThirdPersonOmniscient: "第三人称全知",
}

var tenseLabels = map[entity.Tense]string{
	entity.TensePast:    "过去时",
	entity.TensePresent: "现在时",
	entity.TenseFuture:  "将来时",
}

var descriptionLevelLabels = map[entity.DescriptionLevel]string{
	entity.DescriptionMinimal:  "简洁",
	entity.DescriptionModerate: "适中",
	entity.DescriptionDetailed: "详细",
}

var pacingLabels = map[entity.Pacing]string{
	entity.PacingFast:   "快节奏",
	entity.PacingMedium: "中等节奏",
	entity.PacingSlow:   "慢节奏",
}

// label 查表，未收录的值原样返回
func label[K ~string](table map[K]string, key K) string {
	if v, ok := table[key]; ok {
		return v
	}
	return string(key)
}

// RoleLabel 角色定位标签
func RoleLabel(r entity.CharacterRole) string {
	return label(roleLabels, r)
}

func KindLabel(k entity.GenerationKind) string {
	return label(kindLabels, k)
}

func PerspectiveLabel(p entity.Perspective) string {
	return label(perspectiveLabels, p)
}

func TenseLabel(t entity.Tense) string {
	return label(tenseLabels, t)
}

func DescriptionLabel(d entity.DescriptionLevel) string {
	return label(descriptionLevelLabels, d)
}

func PacingLabel(p entity.Pacing) string {
	return label(pacingLabels, p)
}
