// Package generation 小说内容生成：提示词构建、模型调用与兜底、内容分析
package generation

import "unicode/utf8"

const (
	cjkFirst rune = '\u4e00'
	cjkLast  rune = '\u9fa5'
)

// CountSemanticUnits 统计语义单元数：每个汉字计 1，连续英文字母计 1，连续数字计 1
func CountSemanticUnits(text string) int {
	count := 0
	prev := runeOther
	for _, r := range text {
		class := classifyRune(r)
		switch class {
		case runeCJK:
			count++
		case runeLetter, runeDigit:
			if class != prev {
				count++
			}
		}
		prev = class
	}
	return count
}

type runeClass uint8

const (
	runeOther runeClass = iota
	runeCJK
	runeLetter
	runeDigit
)

func classifyRune(r rune) runeClass {
	switch {
	case r >= cjkFirst && r <= cjkLast:
		return runeCJK
	case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		return runeLetter
	case r >= '0' && r <= '9':
		return runeDigit
	default:
		return runeOther
	}
}

// truncateRunes 截取前 maxRunes 个字符
func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
