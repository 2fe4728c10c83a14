package generation

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-novel-api/internal/domain/entity"
)

func fixedPick(i int) func(int) int {
	return func(int) int { return i }
}

func settingsWithTarget(n int) entity.GenerationSettings {
	return entity.GenerationSettings{TargetWordCount: n}
}

func TestNewSynthesizer_RejectsUncountableCorpus(t *testing.T) {
	_, err := NewSynthesizer(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = NewSynthesizer([]string{"正常段落。", "……！？"}, nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestSynthesize_TrimsSinglePassage(t *testing.T) {
	s, err := NewSynthesizer(DefaultCorpus, fixedPick(0))
	require.NoError(t, err)

	out := s.Synthesize(settingsWithTarget(50))
	assert.Equal(t, "夜幕降临，城市中的霓虹灯开始闪烁。李明走在熟悉的街道上，心中却涌起一股莫名的不安。今晚注定不会平静。", out)
	assert.Equal(t, 45, CountSemanticUnits(out))
}

func TestSynthesize_KeepsPassageWithinTolerance(t *testing.T) {
	s, err := NewSynthesizer(DefaultCorpus, fixedPick(0))
	require.NoError(t, err)

	// 76 个单元，未超过 70*1.2
	out := s.Synthesize(settingsWithTarget(70))
	assert.Equal(t, DefaultCorpus[0], out)
}

func TestSynthesize_ExtendsThenTrims(t *testing.T) {
	s, err := NewSynthesizer(DefaultCorpus, fixedPick(0))
	require.NoError(t, err)

	out := s.Synthesize(settingsWithTarget(100))
	assert.Equal(t, 91, CountSemanticUnits(out))
	assert.Contains(t, out, "\n\n夜幕降临")
}

func TestSynthesize_ExtendsWithSeparators(t *testing.T) {
	picks := []int{1, 2, 3}
	i := 0
	s, err := NewSynthesizer(DefaultCorpus, func(int) int {
		p := picks[i%len(picks)]
		i++
		return p
	})
	require.NoError(t, err)

	out := s.Synthesize(settingsWithTarget(200))
	assert.Equal(t, DefaultCorpus[1]+"\n\n"+DefaultCorpus[2]+"\n\n"+DefaultCorpus[3], out)
	assert.Equal(t, 216, CountSemanticUnits(out))
}

func TestSynthesize_FirstSentenceLongerThanTarget(t *testing.T) {
	s, err := NewSynthesizer(DefaultCorpus, fixedPick(0))
	require.NoError(t, err)

	out := s.Synthesize(settingsWithTarget(10))
	assert.Equal(t, "夜幕降临，城市中的霓虹灯开始闪烁。", out)
	assert.Equal(t, 15, CountSemanticUnits(out))
}

func TestSynthesize_NonPositiveTarget(t *testing.T) {
	s, err := NewSynthesizer(DefaultCorpus, fixedPick(3))
	require.NoError(t, err)

	out := s.Synthesize(settingsWithTarget(0))
	assert.GreaterOrEqual(t, CountSemanticUnits(out), 1)
}

func TestSynthesize_Bounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	s, err := NewSynthesizer(DefaultCorpus, rng.IntN)
	require.NoError(t, err)

	const longestSentence = 31
	for target := 1; target <= 3000; target += 37 {
		out := s.Synthesize(settingsWithTarget(target))
		n := CountSemanticUnits(out)
		require.GreaterOrEqual(t, n, 1, "target=%d", target)

		limit := int(float64(target) * overshootRatio)
		if limit < longestSentence {
			limit = longestSentence
		}
		require.LessOrEqual(t, n, limit, "target=%d", target)
	}
}

func TestSynthesize_CustomCorpus(t *testing.T) {
	s, err := NewSynthesizer([]string{"风起。"}, nil)
	require.NoError(t, err)

	out := s.Synthesize(settingsWithTarget(6))
	assert.Equal(t, strings.Repeat("风起。\n\n", 2)+"风起。", out)
}
