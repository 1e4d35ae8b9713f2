package progression

import (
	"sort"

	"github.com/SlpAus/adventurer-progression-backend/internal/apperr"
)

// SkillState 是分配算法操作的单项专精快照
type SkillState struct {
	Level       int
	XpIntoLevel int
}

// DistributionResult 描述一次XP分配的完整结果
type DistributionResult struct {
	// PerSkillDelta 记录每个技能实际获得的XP
	PerSkillDelta map[string]int

	// NewStates 是分配后所有技能的新状态（包含未受影响的技能）
	NewStates map[string]SkillState

	// LeveledUp 是本次分配中等级发生变化的技能名，按分配顺序排列
	LeveledUp []string

	// Created 是本次分配中被自动创建的技能名，按分配顺序排列
	Created []string
}

// DistributeXp 将一笔XP按策略分配到技能上，并让每一份分配经过升级曲线。
//
// 分配策略:
//   - targetSkills 非空时，在指定技能间平均分配，余数归给列表中的第一个技能
//     （确定性的平局处理）；不存在的技能先以1级0XP创建。
//   - targetSkills 为空时，在当前所有技能间平均分配，技能名排序后的第一个
//     技能获得余数；冒险者还没有任何技能时不做分配（XP只保留在整体等级上）。
func DistributeXp(curve Curve, states map[string]SkillState, totalXp int, targetSkills []string) (*DistributionResult, error) {
	if totalXp < 0 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "待分配的经验不能为负数: %d", totalXp)
	}

	result := &DistributionResult{
		PerSkillDelta: make(map[string]int),
		NewStates:     make(map[string]SkillState, len(states)),
	}
	for skill, state := range states {
		result.NewStates[skill] = state
	}

	// 1. 确定分配顺序
	order := normalizeTargets(targetSkills)
	if len(order) == 0 {
		// 没有指定目标：分配到当前全部技能，按技能名排序保证确定性
		for skill := range states {
			order = append(order, skill)
		}
		sort.Strings(order)
	}
	if len(order) == 0 {
		// 完全没有技能可分配，XP只保留在冒险者整体等级上
		return result, nil
	}

	// 2. 自动创建缺失的目标技能
	for _, skill := range order {
		if _, ok := result.NewStates[skill]; !ok {
			result.NewStates[skill] = SkillState{Level: 1, XpIntoLevel: 0}
			result.Created = append(result.Created, skill)
		}
	}

	// 3. 平均分配，余数归给第一个技能
	share := totalXp / len(order)
	remainder := totalXp % len(order)

	for i, skill := range order {
		delta := share
		if i == 0 {
			delta += remainder
		}
		result.PerSkillDelta[skill] = delta

		// 4. 每一份分配都经过该技能自己的升级曲线
		state := result.NewStates[skill]
		newLevel, newXpInto, levelsGained, err := curve.Advance(state.Level, state.XpIntoLevel, delta)
		if err != nil {
			return nil, err
		}
		result.NewStates[skill] = SkillState{Level: newLevel, XpIntoLevel: newXpInto}
		if levelsGained > 0 {
			result.LeveledUp = append(result.LeveledUp, skill)
		}
	}

	return result, nil
}

// normalizeTargets 去掉空白项和重复项，保持首次出现的顺序
func normalizeTargets(targets []string) []string {
	if len(targets) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(targets))
	normalized := make([]string, 0, len(targets))
	for _, skill := range targets {
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		normalized = append(normalized, skill)
	}
	return normalized
}
