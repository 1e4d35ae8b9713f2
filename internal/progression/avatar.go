package progression

// ComputeAvatarLevel 根据全部专精等级推导通用化身等级。
// 取所有专精等级算术平均值的向下取整，等权重；
// 没有任何专精的冒险者化身等级为1，与整体等级的下限保持一致。
// 纯函数，每次触及专精的变更后都重新计算，从不缓存。
func ComputeAvatarLevel(states map[string]SkillState) int {
	if len(states) == 0 {
		return 1
	}

	sum := 0
	for _, state := range states {
		sum += state.Level
	}

	avatar := sum / len(states)
	if avatar < 1 {
		return 1
	}
	return avatar
}
