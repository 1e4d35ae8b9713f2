package progression

import (
	"testing"

	"github.com/SlpAus/adventurer-progression-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestNextLevelThresholdMonotonic 验证升级门槛随等级严格递增
func TestNextLevelThresholdMonotonic(t *testing.T) {
	curve := Curve{Base: 300}
	for level := 1; level <= 200; level++ {
		assert.Greater(t, curve.NextLevelThreshold(level+1), curve.NextLevelThreshold(level),
			"level %d 的门槛应小于 level %d 的门槛", level, level+1)
	}
}

// TestAdvanceSingleLevelUp 验证单次跨越一个门槛
func TestAdvanceSingleLevelUp(t *testing.T) {
	curve := Curve{Base: 300}

	// 1级0XP + 375XP: 门槛300 -> 2级，余75
	newLevel, newXpInto, gained, err := curve.Advance(1, 0, 375)
	require.NoError(t, err)
	assert.Equal(t, 2, newLevel)
	assert.Equal(t, 75, newXpInto)
	assert.Equal(t, 1, gained)
}

// TestAdvanceMultiLevelRollover 验证一笔大额XP可以连续跨越多个门槛
func TestAdvanceMultiLevelRollover(t *testing.T) {
	curve := Curve{Base: 100}

	// 1级0XP + 1000XP: 门槛依次为100/200/300，共600 -> 4级余400
	// 正好等于4级门槛400 -> 继续升到5级余0
	newLevel, newXpInto, gained, err := curve.Advance(1, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 5, newLevel)
	assert.Equal(t, 0, newXpInto)
	assert.Equal(t, 4, gained)
}

// TestAdvanceRejectsNegativeDelta 验证负增量被拒绝且等级不变
func TestAdvanceRejectsNegativeDelta(t *testing.T) {
	curve := Curve{Base: 300}

	_, _, _, err := curve.Advance(3, 50, -1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
}

// TestAdvanceZeroDeltaIsNoop 验证零增量不改变任何状态
func TestAdvanceZeroDeltaIsNoop(t *testing.T) {
	curve := Curve{Base: 300}

	newLevel, newXpInto, gained, err := curve.Advance(7, 123, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, newLevel)
	assert.Equal(t, 123, newXpInto)
	assert.Equal(t, 0, gained)
}

// TestCumulativeForLevel 验证累计XP与逐级门槛求和一致
func TestCumulativeForLevel(t *testing.T) {
	curve := Curve{Base: 300}

	sum := 0
	for level := 1; level <= 50; level++ {
		assert.Equal(t, sum, curve.CumulativeForLevel(level), "level %d", level)
		sum += curve.NextLevelThreshold(level)
	}
}

// TestProgressWithinLevelClamped 验证管理员覆写后进度被钳制在合法区间
func TestProgressWithinLevelClamped(t *testing.T) {
	curve := Curve{Base: 1000}

	// 等级被覆写得太高：总XP不足以到达该级，进度钳为0
	assert.Equal(t, 0, curve.ProgressWithinLevel(5, 2500))

	// 总XP超过该级门槛上限：进度钳到门槛
	assert.Equal(t, curve.NextLevelThreshold(1), curve.ProgressWithinLevel(1, 99999))

	// 正常区间
	assert.Equal(t, 750, curve.ProgressWithinLevel(1, 750))
}

// TestAdvanceAssociativity 是rapid属性测试：
// 把一笔XP任意拆成多次应用，最终状态与一次性应用完全一致
func TestAdvanceAssociativity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		curve := Curve{Base: rapid.IntRange(1, 2000).Draw(t, "base")}
		startLevel := rapid.IntRange(1, 50).Draw(t, "startLevel")
		total := rapid.IntRange(0, 100000).Draw(t, "total")
		cut := rapid.IntRange(0, total).Draw(t, "cut")

		levelA, xpA, _, err := curve.Advance(startLevel, 0, total)
		require.NoError(t, err)

		midLevel, midXp, _, err := curve.Advance(startLevel, 0, cut)
		require.NoError(t, err)
		levelB, xpB, _, err := curve.Advance(midLevel, midXp, total-cut)
		require.NoError(t, err)

		assert.Equal(t, levelA, levelB, "拆分应用后的等级应与一次性应用一致")
		assert.Equal(t, xpA, xpB, "拆分应用后的级内XP应与一次性应用一致")
	})
}

// TestAdvanceNeverDecreasesLevel 是rapid属性测试：等级永不下降
func TestAdvanceNeverDecreasesLevel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		curve := Curve{Base: rapid.IntRange(1, 2000).Draw(t, "base")}
		level := rapid.IntRange(1, 100).Draw(t, "level")
		xpInto := rapid.IntRange(0, curve.NextLevelThreshold(level)-1).Draw(t, "xpInto")
		delta := rapid.IntRange(0, 1000000).Draw(t, "delta")

		newLevel, newXpInto, gained, err := curve.Advance(level, xpInto, delta)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, newLevel, level)
		assert.Equal(t, newLevel-level, gained)
		assert.GreaterOrEqual(t, newXpInto, 0)
		assert.Less(t, newXpInto, curve.NextLevelThreshold(newLevel))
	})
}
