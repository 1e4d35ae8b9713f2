package progression

import (
	"github.com/SlpAus/adventurer-progression-backend/internal/apperr"
)

// Curve 表示一条纯函数升级曲线。
// 同一条曲线形状被冒险者整体等级和单项专精等级共用，只是基数不同。
// 曲线必须是确定性的，且升级门槛随等级严格递增。
type Curve struct {
	// Base 是1级升2级所需的XP，同时决定曲线的整体陡峭程度
	Base int
}

// NextLevelThreshold 返回从level升到level+1所需的XP总量。
// 形状: threshold(L) = Base × L，对 level ≥ 1 有定义，随等级严格递增。
func (c Curve) NextLevelThreshold(level int) int {
	if level < 1 {
		level = 1
	}
	return c.Base * level
}

// Advance 将一笔XP增量应用到(level, xpIntoLevel)状态上。
// 一笔足够大的XP可以连续跨越多个门槛，循环直到剩余XP不足下一个门槛。
// 负的delta返回InvalidArgument；等级永不下降。
func (c Curve) Advance(level, xpIntoLevel, delta int) (newLevel, newXpIntoLevel, levelsGained int, err error) {
	if delta < 0 {
		return 0, 0, 0, apperr.Newf(apperr.KindInvalidArgument, "经验增量不能为负数: %d", delta)
	}
	if level < 1 {
		level = 1
	}
	if xpIntoLevel < 0 {
		xpIntoLevel = 0
	}

	newLevel = level
	newXpIntoLevel = xpIntoLevel + delta
	for newXpIntoLevel >= c.NextLevelThreshold(newLevel) {
		newXpIntoLevel -= c.NextLevelThreshold(newLevel)
		newLevel++
		levelsGained++
	}
	return newLevel, newXpIntoLevel, levelsGained, nil
}

// CumulativeForLevel 返回从1级升到level级总共需要的XP。
// threshold为线性时有闭式解: Base × level × (level-1) / 2。
func (c Curve) CumulativeForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return c.Base * level * (level - 1) / 2
}

// ProgressWithinLevel 根据累计XP总量推导当前等级内的进度。
// 管理员可以直接覆写等级或XP总量，两者可能不再严格一致，
// 因此这里将进度钳制在 [0, threshold(level)] 区间内。
func (c Curve) ProgressWithinLevel(level, totalXp int) int {
	progress := totalXp - c.CumulativeForLevel(level)
	if progress < 0 {
		return 0
	}
	if max := c.NextLevelThreshold(level); progress > max {
		return max
	}
	return progress
}

// ExperienceToNext 返回距离下一级还差多少XP。这是一个派生视图，永远不落库。
func (c Curve) ExperienceToNext(level, xpIntoLevel int) int {
	remaining := c.NextLevelThreshold(level) - xpIntoLevel
	if remaining < 0 {
		return 0
	}
	return remaining
}
