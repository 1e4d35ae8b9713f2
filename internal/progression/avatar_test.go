package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestComputeAvatarLevelEmpty 验证没有任何专精时化身等级为1
func TestComputeAvatarLevelEmpty(t *testing.T) {
	assert.Equal(t, 1, ComputeAvatarLevel(nil))
	assert.Equal(t, 1, ComputeAvatarLevel(map[string]SkillState{}))
}

// TestComputeAvatarLevelFloorMean 验证化身等级是专精等级均值的向下取整
func TestComputeAvatarLevelFloorMean(t *testing.T) {
	states := map[string]SkillState{
		"swordsmanship": {Level: 5},
		"leadership":    {Level: 2},
		"archery":       {Level: 2},
	}
	// (5+2+2)/3 = 3
	assert.Equal(t, 3, ComputeAvatarLevel(states))

	states["alchemy"] = SkillState{Level: 2}
	// (5+2+2+2)/4 = 2.75 -> 2
	assert.Equal(t, 2, ComputeAvatarLevel(states))
}

// TestComputeAvatarLevelIdempotent 验证同一输入总是得到同一结果
func TestComputeAvatarLevelIdempotent(t *testing.T) {
	states := map[string]SkillState{
		"swordsmanship": {Level: 3},
		"leadership":    {Level: 4},
	}
	first := ComputeAvatarLevel(states)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputeAvatarLevel(states))
	}
}
