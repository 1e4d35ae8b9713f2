package adventurer

import (
	"strings"
	"testing"

	"github.com/SlpAus/adventurer-progression-backend/internal/apperr"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAdventurerDefaults(t *testing.T) {
	setupTestDB(t)

	dto, err := CreateAdventurer("Frodo", []string{"stealth", "diplomacy", "stealth"}, 1, 0)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(dto.ID, "adv_"))
	assert.Equal(t, "Frodo", dto.Name)
	assert.Equal(t, 1, dto.Level)
	assert.Equal(t, 0, dto.ExperiencePoints)
	assert.Equal(t, 1000, dto.ExperienceToNext)
	assert.Equal(t, 1, dto.UniversalAvatarLevel)
	assert.Nil(t, dto.Mentor)

	// 重复的初始技能只创建一次，按技能名排序返回
	require.Len(t, dto.Proficiencies, 2)
	assert.Equal(t, "diplomacy", dto.Proficiencies[0].Skill)
	assert.Equal(t, "stealth", dto.Proficiencies[1].Skill)
	for _, p := range dto.Proficiencies {
		assert.Equal(t, 1, p.Level)
		assert.Equal(t, 0, p.ExperiencePoints)
		assert.Equal(t, 300, p.ExperienceToNext)
	}
}

func TestCreateAdventurerValidation(t *testing.T) {
	setupTestDB(t)

	_, err := CreateAdventurer("", nil, 1, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))

	_, err = CreateAdventurer("Frodo", nil, 0, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))

	_, err = CreateAdventurer("Frodo", nil, 1, -10)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
}

func TestGetAdventurerNotFound(t *testing.T) {
	setupTestDB(t)

	_, err := GetAdventurer("adv_missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAddExperienceSplitsAcrossTargets(t *testing.T) {
	setupTestDB(t)
	dto := mustCreateAdventurer(t, "Aragorn", nil)

	// 750XP定向分到两个尚不存在的技能：每个375，越过300门槛后各剩75
	result, err := AddExperience(dto.ID, 750, []string{"swordsmanship", "leadership"}, "quest completion")
	require.NoError(t, err)

	assert.False(t, result.LevelUpOccurred)
	assert.Equal(t, []string{"leadership", "swordsmanship"}, result.AffectedProficiencies)

	adv := result.Adventurer
	assert.Equal(t, 1, adv.Level)
	assert.Equal(t, 750, adv.ExperiencePoints)
	assert.Equal(t, 250, adv.ExperienceToNext)

	require.Len(t, adv.Proficiencies, 2)
	for _, p := range adv.Proficiencies {
		assert.Equal(t, 2, p.Level)
		assert.Equal(t, 75, p.ExperiencePoints)
		assert.Equal(t, 525, p.ExperienceToNext)
	}
	// 两个技能都是2级，化身等级随之提升
	assert.Equal(t, 2, adv.UniversalAvatarLevel)
}

func TestAddExperienceRemainderToFirstTarget(t *testing.T) {
	setupTestDB(t)
	dto := mustCreateAdventurer(t, "Legolas", nil)

	result, err := AddExperience(dto.ID, 100, []string{"archery", "tracking", "stealth"}, "")
	require.NoError(t, err)

	byName := make(map[string]ProficiencyDTO)
	for _, p := range result.Adventurer.Proficiencies {
		byName[p.Skill] = p
	}
	// 100/3 = 33余1，余数归给目标列表中的第一个技能
	assert.Equal(t, 34, byName["archery"].ExperiencePoints)
	assert.Equal(t, 33, byName["tracking"].ExperiencePoints)
	assert.Equal(t, 33, byName["stealth"].ExperiencePoints)
}

func TestAddExperienceLevelsUpAdventurer(t *testing.T) {
	setupTestDB(t)
	dto := mustCreateAdventurer(t, "Boromir", nil)

	// 没有任何技能也没有目标：XP只进入整体等级轨道
	result, err := AddExperience(dto.ID, 2100, nil, "")
	require.NoError(t, err)

	assert.True(t, result.LevelUpOccurred)
	assert.Equal(t, 2, result.NewLevel)
	assert.Empty(t, result.AffectedProficiencies)
	assert.Equal(t, 2100, result.Adventurer.ExperiencePoints)
	assert.Equal(t, 2, result.Adventurer.Level)
	// 2级内已有1100，距离3级还差900
	assert.Equal(t, 900, result.Adventurer.ExperienceToNext)
}

func TestAddExperienceDefaultsToAllSkills(t *testing.T) {
	setupTestDB(t)
	dto := mustCreateAdventurer(t, "Gimli", []string{"axemanship", "smithing"})

	// 没有指定目标：在现有技能间平均分配，排序后的第一个技能拿余数
	result, err := AddExperience(dto.ID, 101, nil, "")
	require.NoError(t, err)

	byName := make(map[string]ProficiencyDTO)
	for _, p := range result.Adventurer.Proficiencies {
		byName[p.Skill] = p
	}
	assert.Equal(t, 51, byName["axemanship"].ExperiencePoints)
	assert.Equal(t, 50, byName["smithing"].ExperiencePoints)
}

func TestAddExperienceNegativeRejected(t *testing.T) {
	setupTestDB(t)
	dto := mustCreateAdventurer(t, "Sam", []string{"cooking"})

	_, err := AddExperience(dto.ID, -1, nil, "")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))

	// 失败的发放不留下任何痕迹
	after, err := GetAdventurer(dto.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.ExperiencePoints)
	assert.Equal(t, 0, after.Proficiencies[0].ExperiencePoints)
}

func TestAddExperienceSplitEqualsSingleAward(t *testing.T) {
	setupTestDB(t)
	one := mustCreateAdventurer(t, "Merry", []string{"mischief"})
	two := mustCreateAdventurer(t, "Pippin", []string{"mischief"})

	_, err := AddExperience(one.ID, 400, nil, "")
	require.NoError(t, err)
	_, err = AddExperience(one.ID, 350, nil, "")
	require.NoError(t, err)

	_, err = AddExperience(two.ID, 750, nil, "")
	require.NoError(t, err)

	afterOne, err := GetAdventurer(one.ID)
	require.NoError(t, err)
	afterTwo, err := GetAdventurer(two.ID)
	require.NoError(t, err)

	// 分两笔发放与一笔发放到达完全相同的状态
	assert.Equal(t, afterTwo.Level, afterOne.Level)
	assert.Equal(t, afterTwo.ExperiencePoints, afterOne.ExperiencePoints)
	assert.Equal(t, afterTwo.Proficiencies, afterOne.Proficiencies)
}

func TestAddExperienceWritesAuditRecord(t *testing.T) {
	setupTestDB(t)
	dto := mustCreateAdventurer(t, "Bilbo", []string{"riddles"})

	_, err := AddExperience(dto.ID, 120, []string{"riddles"}, "birthday party")
	require.NoError(t, err)

	var awards []ExperienceAward
	require.NoError(t, database.DB.Where("adventurer_id = ?", dto.ID).Find(&awards).Error)
	require.Len(t, awards, 1)
	assert.Equal(t, 120, awards[0].Amount)
	assert.Equal(t, "birthday party", awards[0].Reason)
	assert.Equal(t, 1, awards[0].LevelAfter)
}

func TestUpdateAdventurerPartial(t *testing.T) {
	setupTestDB(t)
	dto := mustCreateAdventurer(t, "Eowyn", []string{"swordsmanship"})
	_, err := AddExperience(dto.ID, 150, []string{"swordsmanship"}, "")
	require.NoError(t, err)

	newName := "Eowyn of Rohan"
	updated, err := UpdateAdventurer(dto.ID, UpdateFields{
		Name:          &newName,
		Proficiencies: []string{"swordsmanship", "riding"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Eowyn of Rohan", updated.Name)
	assert.Equal(t, 150, updated.ExperiencePoints)

	byName := make(map[string]ProficiencyDTO)
	for _, p := range updated.Proficiencies {
		byName[p.Skill] = p
	}
	// 已存在的技能保持原状，新技能以1级0XP添加
	require.Len(t, updated.Proficiencies, 2)
	assert.Equal(t, 150, byName["swordsmanship"].ExperiencePoints)
	assert.Equal(t, 0, byName["riding"].ExperiencePoints)
}

func TestUpdateAdventurerOverridesLevel(t *testing.T) {
	setupTestDB(t)
	dto := mustCreateAdventurer(t, "Theoden", nil)

	level := 5
	xp := 12000
	updated, err := UpdateAdventurer(dto.ID, UpdateFields{Level: &level, ExperiencePoints: &xp})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.Level)
	assert.Equal(t, 12000, updated.ExperiencePoints)
	// 覆写后派生视图仍按曲线重算: 5级累计门槛10000, 级内2000, 5级门槛5000
	assert.Equal(t, 3000, updated.ExperienceToNext)
}

func TestUpdateAdventurerValidation(t *testing.T) {
	setupTestDB(t)
	dto := mustCreateAdventurer(t, "Denethor", nil)

	empty := ""
	_, err := UpdateAdventurer(dto.ID, UpdateFields{Name: &empty})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))

	zero := 0
	_, err = UpdateAdventurer(dto.ID, UpdateFields{Level: &zero})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
}

func TestDeleteAdventurer(t *testing.T) {
	setupTestDB(t)
	dto := mustCreateAdventurer(t, "Gollum", []string{"stealth"})

	require.NoError(t, DeleteAdventurer(dto.ID))

	_, err := GetAdventurer(dto.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	list, err := ListAdventurers()
	require.NoError(t, err)
	assert.Empty(t, list)

	// 重复删除同样是NotFound
	err = DeleteAdventurer(dto.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestListAdventurersOrder(t *testing.T) {
	setupTestDB(t)
	first := mustCreateAdventurer(t, "First", nil)
	second := mustCreateAdventurer(t, "Second", nil)

	list, err := ListAdventurers()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}
